// Package logging wires up the process-wide zap logger that
// cmd/pyredis-go hands to the server.
package logging

import "go.uber.org/zap"

// New returns a production zap logger, or a development one (human-
// readable, debug-level) when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
