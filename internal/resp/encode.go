package resp

import "strconv"

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// AppendTo appends f's canonical wire encoding to dst and returns the
// extended slice, letting callers build a response without an extra copy.
func (f Frame) AppendTo(dst []byte) []byte {
	switch f.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, f.Str...)
		return append(dst, crlf...)
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, f.Str...)
		return append(dst, crlf...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, f.Int, 10)
		return append(dst, crlf...)
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(f.Str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, f.Str...)
		return append(dst, crlf...)
	case KindNullBulkString:
		return append(dst, "$-1\r\n"...)
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(f.Arr)), 10)
		dst = append(dst, crlf...)
		for _, item := range f.Arr {
			dst = item.AppendTo(dst)
		}
		return dst
	case KindNullArray:
		return append(dst, "*0\r\n"...)
	case KindNull:
		return append(dst, "_\r\n"...)
	default:
		return dst
	}
}

// Encode returns f's canonical wire encoding as a new byte slice.
func (f Frame) Encode() []byte {
	return f.AppendTo(nil)
}
