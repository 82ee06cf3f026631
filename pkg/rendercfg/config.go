// Package rendercfg loads the renderer daemon's runtime configuration
// from flags, environment variables, and an optional config file, via
// spf13/viper (spec SPEC_FULL.md §6.2).
package rendercfg

import (
	"time"

	"github.com/spf13/viper"

	"github.com/hvml/purcmc-go/pkg/endpoint"
)

// Config holds every knob cmd/purcmcd's serve command needs to start a
// Renderer.
type Config struct {
	// ListenAddr is the host:port the WebSocket transport listens on.
	ListenAddr string

	// HTTPAddr is the host:port pkg/httpapi's debug/metrics surface
	// listens on.
	HTTPAddr string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// Backend selects which backend.Callbacks implementation
	// cmd/purcmcd wires up. Only "ref" (pkg/refbackend) exists today.
	Backend string

	PingTime         time.Duration
	NoRespondingTime time.Duration

	// ArchiveEnabled turns on pkg/archive's S3-backed transcript mirror.
	ArchiveEnabled  bool
	ArchiveBucket   string
	ArchivePrefix   string
	ArchiveRegion   string
	ArchiveEndpoint string

	// PersistEnabled turns on pkg/endpoint/persist.go's sqlite-backed
	// endpoint directory.
	PersistEnabled bool
	PersistPath    string
}

// SweepConfig projects the liveness timings into an endpoint.SweepConfig.
func (c Config) SweepConfig() endpoint.SweepConfig {
	return endpoint.SweepConfig{PingTime: c.PingTime, NoRespondingTime: c.NoRespondingTime}
}

// Load reads configuration from viper, which merges flag values, env
// vars (PURCMC_* prefix, bound in cmd/purcmcd), and an optional config
// file, mirroring the joestump-claude-ops CLI's config.Load pattern.
func Load() Config {
	return Config{
		ListenAddr:       viper.GetString("listen_addr"),
		HTTPAddr:         viper.GetString("http_addr"),
		LogLevel:         viper.GetString("log_level"),
		Backend:          viper.GetString("backend"),
		PingTime:         viper.GetDuration("ping_time"),
		NoRespondingTime: viper.GetDuration("no_responding_time"),
		ArchiveEnabled:   viper.GetBool("archive_enabled"),
		ArchiveBucket:    viper.GetString("archive_bucket"),
		ArchivePrefix:    viper.GetString("archive_prefix"),
		ArchiveRegion:    viper.GetString("archive_region"),
		ArchiveEndpoint:  viper.GetString("archive_endpoint"),
		PersistEnabled:   viper.GetBool("persist_enabled"),
		PersistPath:      viper.GetString("persist_path"),
	}
}
