package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/refactoredjello/pyredis-go/internal/resp"
)

// Grounded on pyredis/set_args_parser.py: SET's trailing options are a
// small flag grammar rather than named parameters, so they're parsed by
// hand, token at a time, into a setOptions value.

type presenceFlag int

const (
	presenceNone presenceFlag = iota
	presenceNX
	presenceXX
)

type expiryKind int

const (
	expiryNone expiryKind = iota
	expiryEX
	expiryPX
	expiryEXAT
	expiryPXAT
)

type setOptions struct {
	presence    presenceFlag
	getFlag     bool
	keepTTL     bool
	expiryKind  expiryKind
	expiryValue int64
}

// needsOldRecord reports whether evaluating these options requires looking
// up the key's current record before the new value is written.
func (o setOptions) needsOldRecord() bool {
	return o.presence != presenceNone || o.getFlag || o.keepTTL
}

// expiryTime resolves the option's expiry into an absolute time.Time, given
// the current time. Returns the zero Time for options carrying no expiry.
func (o setOptions) expiryTime(now time.Time) time.Time {
	switch o.expiryKind {
	case expiryEX:
		return now.Add(time.Duration(o.expiryValue) * time.Second)
	case expiryPX:
		return now.Add(time.Duration(o.expiryValue) * time.Millisecond)
	case expiryEXAT:
		return time.Unix(o.expiryValue, 0)
	case expiryPXAT:
		return time.UnixMilli(o.expiryValue)
	default:
		return time.Time{}
	}
}

// parseSetArgs parses the tokens following SET's key and value. EX/PX/EXAT/
// PXAT/KEEPTTL are mutually exclusive with each other, as are NX/XX; GET
// may combine with any of them.
func parseSetArgs(rest []resp.Frame) (setOptions, error) {
	var o setOptions
	for i := 0; i < len(rest); i++ {
		token, ok := bulkString(rest[i])
		if !ok {
			return o, fmt.Errorf("syntax error")
		}
		switch strings.ToUpper(token) {
		case "GET":
			if o.getFlag {
				return o, fmt.Errorf("syntax error, duplicate GET")
			}
			o.getFlag = true

		case "NX":
			if o.presence != presenceNone {
				return o, fmt.Errorf("syntax error: NX and XX are mutually exclusive")
			}
			o.presence = presenceNX

		case "XX":
			if o.presence != presenceNone {
				return o, fmt.Errorf("syntax error: NX and XX are mutually exclusive")
			}
			o.presence = presenceXX

		case "KEEPTTL":
			if o.expiryKind != expiryNone || o.keepTTL {
				return o, fmt.Errorf("syntax error: cannot use more than one expiry option")
			}
			o.keepTTL = true

		case "EX", "PX", "EXAT", "PXAT":
			if o.expiryKind != expiryNone || o.keepTTL {
				return o, fmt.Errorf("syntax error: cannot use more than one expiry option")
			}
			i++
			if i >= len(rest) {
				return o, fmt.Errorf("syntax error: %s requires a value", token)
			}
			valStr, ok := bulkString(rest[i])
			if !ok {
				return o, fmt.Errorf("value is not an integer or out of range")
			}
			val, err := strconv.ParseInt(valStr, 10, 64)
			if err != nil || val < 0 {
				return o, fmt.Errorf("value is not an integer or out of range")
			}
			switch strings.ToUpper(token) {
			case "EX":
				o.expiryKind = expiryEX
			case "PX":
				o.expiryKind = expiryPX
			case "EXAT":
				o.expiryKind = expiryEXAT
			case "PXAT":
				o.expiryKind = expiryPXAT
			}
			o.expiryValue = val

		default:
			return o, fmt.Errorf("syntax error: unknown option %q", token)
		}
	}
	return o, nil
}

// normalizeSetValue stores decimal-looking bulk strings as Integer frames,
// per spec.md §4.6's SET value-normalization rule; anything else is kept
// as given.
func normalizeSetValue(f resp.Frame) resp.Frame {
	if f.Kind != resp.KindBulkString {
		return f
	}
	if n, err := strconv.ParseInt(string(f.Str), 10, 64); err == nil {
		return resp.Int(n)
	}
	return f
}
