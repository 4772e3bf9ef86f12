// Package command implements the RESP command registry and handlers:
// parsing a request Array, routing it by upper-cased command name, and
// producing a response Frame. Adapted from pyredis/commands.py's
// register_command decorator + Command.exec, translated into an explicit
// map built once at construction time (per spec.md §9 — no global mutable
// registry, no decorator magic) and from flonle-diy-redis's one-method-
// per-command handler shape.
package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/refactoredjello/pyredis-go/internal/aof"
	"github.com/refactoredjello/pyredis-go/internal/resp"
	"github.com/refactoredjello/pyredis-go/internal/store"
)

// Handler executes one command. args is the full request array, including
// the command name at args[0].
type Handler func(d *Dispatcher, args []resp.Frame) resp.Frame

// mutatingCommands names the commands the AOF writer must see, per
// spec.md §4.6's AOF hook and §4.5's "only mutating commands are logged"
// rule.
var mutatingCommands = map[string]bool{
	"SET":   true,
	"DEL":   true,
	"LPUSH": true,
	"RPUSH": true,
	"INCR":  true,
	"DECR":  true,
}

// Dispatcher holds the command registry and the collaborators handlers
// need: the store and the AOF writer. logAOF is turned off for the
// duration of AOF replay so replayed commands are not re-logged.
type Dispatcher struct {
	store    *store.Store
	aofLog   *aof.Writer
	logAOF   bool
	handlers map[string]Handler
	now      func() time.Time
}

// New builds the command registry and returns a ready Dispatcher. aofLog
// may be nil when AOF logging is disabled entirely (not to be confused
// with DisableAOF, which is the transient replay-time toggle).
func New(s *store.Store, aofLog *aof.Writer) *Dispatcher {
	d := &Dispatcher{
		store:  s,
		aofLog: aofLog,
		logAOF: true,
		now:    time.Now,
	}
	d.handlers = map[string]Handler{
		"PING":    handlePing,
		"ECHO":    handleEcho,
		"INFO":    handleInfo,
		"COMMAND": handleCommand,
		"DBSIZE":  handleDBSize,
		"EXISTS":  handleExists,
		"DEL":     handleDel,
		"GET":     handleGet,
		"SET":     handleSet,
		"INCR":    handleIncr,
		"DECR":    handleDecr,
		"LPUSH":   handleLPush,
		"RPUSH":   handleRPush,
		"LRANGE":  handleLRange,
	}
	return d
}

// DisableAOF suppresses AOF logging, used while replaying the log on
// startup so replayed commands aren't re-appended.
func (d *Dispatcher) DisableAOF() { d.logAOF = false }

// EnableAOF restores normal AOF logging after a replay.
func (d *Dispatcher) EnableAOF() { d.logAOF = true }

// SetClock overrides the time source handlers use for expiry
// calculations; tests use this for determinism. Production code never
// needs to call it.
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

// Dispatch routes request — which must be an Array of BulkStrings, per
// spec.md §4.6's input contract — to its handler and returns the response
// frame. An unknown command name yields a RESP Error; the connection
// stays open either way.
func (d *Dispatcher) Dispatch(request resp.Frame) resp.Frame {
	if request.Kind != resp.KindArray || len(request.Arr) == 0 {
		return resp.ErrorReply("ERR invalid request: expected a non-empty array")
	}
	name, ok := bulkString(request.Arr[0])
	if !ok {
		return resp.ErrorReply("ERR invalid request: command name must be a bulk string")
	}
	name = strings.ToUpper(name)

	handler, ok := d.handlers[name]
	if !ok {
		return resp.ErrorReply(fmt.Sprintf("ERR command `%s` not found", name))
	}

	if d.logAOF && d.aofLog != nil && mutatingCommands[name] {
		d.aofLog.Log(request)
	}

	return handler(d, request.Arr)
}

func bulkString(f resp.Frame) (string, bool) {
	if f.Kind != resp.KindBulkString {
		return "", false
	}
	return string(f.Str), true
}
