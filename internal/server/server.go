// Package server is the supervisor: it wires the store, AOF writer,
// expiry sampler, and command dispatcher together, runs the optional AOF
// replay, binds the listening socket, and accepts connections until its
// context is cancelled. Adapted from bytes/raw-tcp/server/main.go's
// listen-then-accept-loop shape, with graceful shutdown modeled on
// progressdb-ProgressDB/server/pkg/shutdown's signal-driven cancellable
// context, supervised with golang.org/x/sync/errgroup so a failure in any
// one subsystem (bind, AOF writer, sampler) brings the others down
// cleanly instead of leaking goroutines.
package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/refactoredjello/pyredis-go/internal/aof"
	"github.com/refactoredjello/pyredis-go/internal/command"
	"github.com/refactoredjello/pyredis-go/internal/config"
	"github.com/refactoredjello/pyredis-go/internal/conn"
	"github.com/refactoredjello/pyredis-go/internal/expiry"
	"github.com/refactoredjello/pyredis-go/internal/resp"
	"github.com/refactoredjello/pyredis-go/internal/store"
)

// Server owns every long-lived collaborator a running instance needs.
type Server struct {
	cfg         config.Config
	log         *zap.Logger
	store       *store.Store
	aofWriter   *aof.Writer
	dispatcher  *command.Dispatcher
	sampler     *expiry.Sampler
	connHandler *conn.Handler
}

// New constructs a Server from cfg without starting anything yet.
func New(cfg config.Config, log *zap.Logger) *Server {
	st := store.New()
	aofWriter := aof.NewWriter(cfg.AOFPath, log.Named("aof"))
	dispatcher := command.New(st, aofWriter)
	sampler := expiry.New(st, cfg.ExpiryInterval(), log.Named("expiry"))
	connHandler := conn.NewHandler(dispatcher, cfg.BufferSize, log.Named("conn"))

	return &Server{
		cfg:         cfg,
		log:         log,
		store:       st,
		aofWriter:   aofWriter,
		dispatcher:  dispatcher,
		sampler:     sampler,
		connHandler: connHandler,
	}
}

// Run performs the startup sequence from spec.md §4.8 — start the AOF
// worker, optionally replay the log with AOF logging suspended, start the
// expiry sampler, then bind and accept — and serves until ctx is
// cancelled, at which point the AOF writer, the sampler and the accept
// loop are asked to stop and Run returns once they all have. Connections
// already accepted are not closed by the shutdown; each one ends when its
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.aofWriter.Run(gctx)
	})

	if s.cfg.LoadOnStart {
		if err := s.replayAOF(); err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("server: aof replay: %w", err)
		}
	}

	g.Go(func() error {
		return s.sampler.Run(gctx)
	})

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		cancel()
		g.Wait()
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr(), err)
	}
	s.log.Info("listening", zap.String("addr", s.cfg.Addr()))

	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		return s.acceptLoop(gctx, ln)
	})

	return g.Wait()
}

func (s *Server) replayAOF() error {
	s.dispatcher.DisableAOF()
	defer s.dispatcher.EnableAOF()

	before := s.store.Size()
	if err := aof.Replay(s.cfg.AOFPath, func(f resp.Frame) {
		s.dispatcher.Dispatch(f)
	}); err != nil {
		return err
	}
	s.log.Info("aof replay complete", zap.Int("keys_loaded", s.store.Size()-before))
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.connHandler.Serve(c)
	}
}
