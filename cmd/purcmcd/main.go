// Command purcmcd runs a standalone PURCMC renderer: it accepts HVML
// interpreter client connections over WebSocket, dispatches their
// requests against a back-end implementation, and serves a debug/metrics
// HTTP surface alongside it (SPEC_FULL.md §6.2).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const banner = `
  ┌─┐┬ ┬┬─┐┌─┐┌┬┐┌─┐┌┬┐
  ├─┘│ │├┬┘│  ││││  ││
  ┴  └─┘┴└─└─┘┴ ┴└─┘┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:           "purcmcd",
		Short:         "PURCMC renderer daemon",
		Long:          `purcmcd accepts HVML interpreter client connections and dispatches their requests against a renderer back-end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := serveCmd()
	f := serve.Flags()

	bindFlag := func(viperKey, flagName string) {
		_ = viper.BindPFlag(viperKey, f.Lookup(flagName))
	}
	bindFlag("listen_addr", "listen-addr")
	bindFlag("http_addr", "http-addr")
	bindFlag("log_level", "log-level")
	bindFlag("backend", "backend")
	bindFlag("ping_time", "ping-time")
	bindFlag("no_responding_time", "no-responding-time")
	bindFlag("archive_enabled", "archive-enabled")
	bindFlag("archive_bucket", "archive-bucket")
	bindFlag("archive_prefix", "archive-prefix")
	bindFlag("archive_region", "archive-region")
	bindFlag("archive_endpoint", "archive-endpoint")
	bindFlag("persist_enabled", "persist-enabled")
	bindFlag("persist_path", "persist-path")

	viper.SetEnvPrefix("PURCMC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(serve, versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(banner)
}
