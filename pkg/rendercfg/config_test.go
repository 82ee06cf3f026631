package rendercfg

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadReadsViperKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("listen_addr", ":9999")
	viper.Set("http_addr", ":9998")
	viper.Set("log_level", "debug")
	viper.Set("backend", "ref")
	viper.Set("ping_time", "45s")
	viper.Set("no_responding_time", "75s")
	viper.Set("archive_enabled", true)
	viper.Set("archive_bucket", "purcmc-transcripts")
	viper.Set("persist_enabled", true)
	viper.Set("persist_path", "/var/lib/purcmcd/endpoints.db")

	cfg := Load()

	if cfg.ListenAddr != ":9999" || cfg.HTTPAddr != ":9998" {
		t.Fatalf("unexpected addrs: %+v", cfg)
	}
	if cfg.PingTime != 45*time.Second || cfg.NoRespondingTime != 75*time.Second {
		t.Fatalf("unexpected sweep timings: %+v", cfg)
	}
	if !cfg.ArchiveEnabled || cfg.ArchiveBucket != "purcmc-transcripts" {
		t.Fatalf("unexpected archive config: %+v", cfg)
	}
	if !cfg.PersistEnabled || cfg.PersistPath != "/var/lib/purcmcd/endpoints.db" {
		t.Fatalf("unexpected persist config: %+v", cfg)
	}

	sc := cfg.SweepConfig()
	if sc.PingTime != cfg.PingTime || sc.NoRespondingTime != cfg.NoRespondingTime {
		t.Fatalf("SweepConfig did not project cleanly: %+v", sc)
	}
}

func TestLoadDefaultsToZeroValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()
	if cfg.ListenAddr != "" || cfg.Backend != "" || cfg.PingTime != 0 {
		t.Fatalf("expected zero-value config from an empty viper instance, got %+v", cfg)
	}
}
