package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/refactoredjello/pyredis-go/internal/resp"
)

func handlePing(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 1 {
		return resp.ErrorReply("ERR wrong number of arguments for 'ping' command")
	}
	return resp.SimpleString("PONG")
}

func handleEcho(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'echo' command")
	}
	return args[1]
}

func handleInfo(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 1 {
		return resp.ErrorReply("ERR wrong number of arguments for 'info' command")
	}
	return resp.SimpleString("Running")
}

func handleCommand(d *Dispatcher, args []resp.Frame) resp.Frame {
	return resp.SimpleString("Not Implemented")
}

func handleDBSize(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 1 {
		return resp.ErrorReply("ERR wrong number of arguments for 'dbsize' command")
	}
	return resp.Int(int64(d.store.Size()))
}

func handleExists(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'exists' command")
	}
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	if _, exists := d.store.Get(key); exists {
		return resp.SimpleString("OK")
	}
	return resp.NullBulk()
}

func handleDel(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'del' command")
	}
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	if d.store.Delete(key) {
		return resp.SimpleString("OK")
	}
	return resp.NullBulk()
}

func handleGet(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'get' command")
	}
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	rec, exists := d.store.Get(key)
	if !exists {
		return resp.NullBulk()
	}
	if !rec.Value.IsStringShaped() {
		return resp.ErrorReply("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	return rec.Value.AsBulkString()
}

// handleSet implements SET key value [NX|XX] [GET] [EX s|PX ms|EXAT ts|PXAT
// ts-ms|KEEPTTL], following pyredis/commands.py's order of operations:
// look up the old record only if something needs it, validate NX/XX
// against its presence, resolve the new expiry, write, then answer
// according to GET.
func handleSet(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) < 3 {
		return resp.ErrorReply("ERR wrong number of arguments for 'set' command")
	}
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	valueFrame := args[2]

	opts, err := parseSetArgs(args[3:])
	if err != nil {
		return resp.ErrorReply(fmt.Sprintf("ERR %s", err))
	}

	var oldRec resp.Frame
	var oldExpiry time.Time
	var hadOld bool
	if opts.needsOldRecord() {
		rec, exists := d.store.Get(key)
		oldRec, oldExpiry, hadOld = rec.Value, rec.Expiry, exists
	}

	if opts.presence == presenceNX && hadOld {
		return resp.ErrorReply(fmt.Sprintf("ERR key %q already exists and NX was given", key))
	}
	if opts.presence == presenceXX && !hadOld {
		return resp.ErrorReply(fmt.Sprintf("ERR key %q does not exist and XX was given", key))
	}

	var expiry time.Time
	switch {
	case opts.expiryKind != expiryNone:
		expiry = opts.expiryTime(d.now())
	case opts.keepTTL && hadOld:
		expiry = oldExpiry
	}

	d.store.Set(key, normalizeSetValue(valueFrame), expiry)

	if opts.getFlag {
		if !hadOld {
			return resp.NullBulk()
		}
		if !oldRec.IsStringShaped() {
			return resp.ErrorReply("WRONGTYPE Operation against a key holding the wrong kind of value")
		}
		return oldRec.AsBulkString()
	}
	return resp.SimpleString("OK")
}

// incrDecr implements INCR/DECR. Per spec.md §4.6, a missing key or a
// non-Integer value yields NullBulkString rather than the canonical
// Redis behavior of creating the key at zero.
func incrDecr(d *Dispatcher, args []resp.Frame, delta int64) resp.Frame {
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	rec, exists := d.store.Get(key)
	if !exists || rec.Value.Kind != resp.KindInteger {
		return resp.NullBulk()
	}
	next, overflow := addOverflow(rec.Value.Int, delta)
	if overflow {
		return resp.ErrorReply("ERR increment or decrement would overflow")
	}
	d.store.Set(key, resp.Int(next), rec.Expiry)
	return resp.Int(next)
}

func handleIncr(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'incr' command")
	}
	return incrDecr(d, args, 1)
}

func handleDecr(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 2 {
		return resp.ErrorReply("ERR wrong number of arguments for 'decr' command")
	}
	return incrDecr(d, args, -1)
}

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, true
	}
	return sum, false
}

// pushCmd implements LPUSH/RPUSH. LPUSH prepends each argument in turn, so
// the last argument ends up closest to the head; RPUSH appends them in
// order. Added fresh — the list commands aren't present in the teacher's
// store, only the scalar path is — styled after its handler shape.
func pushCmd(d *Dispatcher, args []resp.Frame, left bool) resp.Frame {
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	values := args[2:]

	rec, exists := d.store.Get(key)
	var list []resp.Frame
	var expiry time.Time
	if exists {
		if rec.Value.Kind != resp.KindArray {
			return resp.ErrorReply("WRONGTYPE Operation against a key holding the wrong kind of value")
		}
		list = rec.Value.Arr
		expiry = rec.Expiry
	}

	if left {
		for _, v := range values {
			list = append([]resp.Frame{v}, list...)
		}
	} else {
		list = append(list, values...)
	}

	d.store.Set(key, resp.ArrayOf(list), expiry)
	return resp.Int(int64(len(list)))
}

func handleLPush(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) < 3 {
		return resp.ErrorReply("ERR wrong number of arguments for 'lpush' command")
	}
	return pushCmd(d, args, true)
}

func handleRPush(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) < 3 {
		return resp.ErrorReply("ERR wrong number of arguments for 'rpush' command")
	}
	return pushCmd(d, args, false)
}

// handleLRange returns list[start..stop] inclusive, with canonical Redis
// negative-index-from-end semantics, except that spec.md's dialect
// returns NullArray (rather than clamping to 0) when start is still
// negative after adding the list length.
func handleLRange(d *Dispatcher, args []resp.Frame) resp.Frame {
	if len(args) != 4 {
		return resp.ErrorReply("ERR wrong number of arguments for 'lrange' command")
	}
	key, ok := bulkString(args[1])
	if !ok {
		return resp.ErrorReply("ERR invalid key")
	}
	startStr, ok1 := bulkString(args[2])
	stopStr, ok2 := bulkString(args[3])
	if !ok1 || !ok2 {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	start, err1 := strconv.Atoi(startStr)
	stop, err2 := strconv.Atoi(stopStr)
	if err1 != nil || err2 != nil {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}

	rec, exists := d.store.Get(key)
	if !exists {
		return resp.NullArr()
	}
	if rec.Value.Kind != resp.KindArray {
		return resp.ErrorReply("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	list := rec.Value.Arr
	n := len(list)

	if start < 0 {
		start += n
		if start < 0 {
			return resp.NullArr()
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return resp.NullArr()
	}

	return resp.ArrayOf(append([]resp.Frame(nil), list[start:stop+1]...))
}
