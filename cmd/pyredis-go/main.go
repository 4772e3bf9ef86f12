// Command pyredis-go runs the server. Flags override config file values,
// which override the built-in defaults from internal/config. Grounded on
// progressdb-ProgressDB/clients/cli/cmd/root.go's cobra root command
// shape (a persistent --config flag, Execute() wrapping rootCmd.Execute()
// with an os.Exit(1) on error).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/refactoredjello/pyredis-go/internal/config"
	"github.com/refactoredjello/pyredis-go/internal/logging"
	"github.com/refactoredjello/pyredis-go/internal/server"
)

var (
	configPath  string
	host        string
	port        int
	bufferSize  int
	expirySecs  int
	aofPath     string
	loadOnStart bool
	verbose     bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pyredis-go: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyredis-go",
		Short: "A single-node, in-memory key/value server speaking a RESP dialect",
		RunE:  run,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (optional)")
	cmd.Flags().StringVar(&host, "host", "", "bind host (default localhost)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (default 6379)")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", 0, "per-connection read buffer size in bytes")
	cmd.Flags().IntVar(&expirySecs, "expiry-interval", 0, "expiry sampler interval in seconds")
	cmd.Flags().StringVar(&aofPath, "aof-path", "", "append-only file path")
	cmd.Flags().BoolVar(&loadOnStart, "load-on-start", false, "replay the AOF file before accepting connections")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable human-readable debug logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)

	log, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("pyredis-go: building logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, log)
	if err := srv.Run(ctx); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags over the loaded
// config, per spec.md §6's precedence (flags > config file > defaults).
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("buffer-size") {
		cfg.BufferSize = bufferSize
	}
	if cmd.Flags().Changed("expiry-interval") {
		cfg.ExpiryIntervalSeconds = expirySecs
	}
	if cmd.Flags().Changed("aof-path") {
		cfg.AOFPath = aofPath
	}
	if cmd.Flags().Changed("load-on-start") {
		cfg.LoadOnStart = loadOnStart
	}
}
