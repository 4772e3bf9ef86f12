// Package config loads server configuration via viper, binding
// environment variables and an optional config file over the defaults
// named in spec.md §6. Grounded on progressdb-ProgressDB/clients/cli's
// cobra+viper pairing (root.go's --config flag, viper bound in from the
// CLI layer) — adapted here for a server rather than a client tool.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the server needs at startup.
type Config struct {
	Host                  string
	Port                  int
	BufferSize            int
	ExpiryIntervalSeconds int
	AOFPath               string
	LoadOnStart           bool
}

// ExpiryInterval converts ExpiryIntervalSeconds to a time.Duration for the
// sampler.
func (c Config) ExpiryInterval() time.Duration {
	return time.Duration(c.ExpiryIntervalSeconds) * time.Second
}

// Addr is the host:port pair to bind.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaults mirror spec.md §6.
func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 6379)
	v.SetDefault("buffer_size", 4096)
	v.SetDefault("expiry_interval_seconds", 300)
	v.SetDefault("aof_path", "dump.aof")
	v.SetDefault("load_on_start", false)
}

// Load builds a Config from defaults, an optional config file at path
// (skipped if path is empty; a file that cannot be read is an error), and
// PYREDIS_-prefixed environment
// variables, in that order of increasing precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PYREDIS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	return Config{
		Host:                  v.GetString("host"),
		Port:                  v.GetInt("port"),
		BufferSize:            v.GetInt("buffer_size"),
		ExpiryIntervalSeconds: v.GetInt("expiry_interval_seconds"),
		AOFPath:               v.GetString("aof_path"),
		LoadOnStart:           v.GetBool("load_on_start"),
	}, nil
}
