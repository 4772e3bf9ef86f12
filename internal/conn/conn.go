// Package conn handles a single client connection: feed bytes into
// internal/resp's incremental parser, dispatch each complete request
// frame, and write its response back in order. Adapted from
// bytes/raw-tcp/server/main.go's handleConn (goroutine per connection,
// read-parse-respond loop), replacing its line-oriented ad hoc parser
// with internal/resp and its bare log.Printf calls with structured zap
// fields keyed by a per-connection correlation id, in the style seen
// across the retrieved pack's network-framing examples.
package conn

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refactoredjello/pyredis-go/internal/command"
	"github.com/refactoredjello/pyredis-go/internal/resp"
)

// defaultReadChunkSize is used when NewHandler is given a non-positive
// buffer size.
const defaultReadChunkSize = 4096

// Handler serves connections against a shared Dispatcher.
type Handler struct {
	dispatcher *command.Dispatcher
	log        *zap.Logger
	chunkSize  int
}

// NewHandler returns a Handler that routes every request it parses to d,
// reading the socket bufferSize bytes at a time (per spec.md §6's
// buffer_size setting).
func NewHandler(d *command.Dispatcher, bufferSize int, log *zap.Logger) *Handler {
	if bufferSize <= 0 {
		bufferSize = defaultReadChunkSize
	}
	return &Handler{dispatcher: d, log: log, chunkSize: bufferSize}
}

// Serve reads, parses, and answers requests from netConn until the
// connection closes or a malformed byte sequence is seen, then closes it.
// Per spec.md §4.7: a handler error is reported as a RESP Error and the
// connection is kept open; a framing error is fatal and closes it; a
// client-initiated disconnect (reset, broken pipe, EOF) closes silently
// without being logged as a failure.
func (h *Handler) Serve(netConn net.Conn) {
	defer netConn.Close()

	connID := uuid.New().String()
	log := h.log.With(zap.String("conn_id", connID), zap.String("remote_addr", netConn.RemoteAddr().String()))
	log.Info("connection accepted")
	defer log.Info("connection closed")

	reader := bufio.NewReaderSize(netConn, h.chunkSize)
	chunk := make([]byte, h.chunkSize)
	var pending []byte

	for {
		for {
			frame, n, err := resp.Parse(pending)
			if err != nil {
				log.Warn("malformed request, closing connection", zap.Error(err))
				return
			}
			if n == 0 {
				break
			}
			response := h.dispatcher.Dispatch(frame)
			if _, writeErr := netConn.Write(response.Encode()); writeErr != nil {
				logConnError(log, "write failed", writeErr)
				return
			}
			pending = pending[n:]
		}

		m, err := reader.Read(chunk)
		if err != nil {
			logConnError(log, "read failed", err)
			return
		}
		pending = append(pending, chunk[:m]...)
	}
}

// logConnError logs at Debug for the ordinary ways a peer goes away (EOF,
// connection reset, broken pipe, already-closed) and at Warn for anything
// else, so a client simply disconnecting doesn't read as a server fault.
func logConnError(log *zap.Logger, msg string, err error) {
	if isBenignDisconnect(err) {
		log.Debug(msg, zap.Error(err))
		return
	}
	log.Warn(msg, zap.Error(err))
}

func isBenignDisconnect(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "reset by peer") || strings.Contains(msg, "broken pipe")
}
