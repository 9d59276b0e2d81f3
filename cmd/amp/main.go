package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/amp"
	zapadapter "github.com/unkn0wn-root/amp/log/zap"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries state shared by subcommands.
type app struct {
	verbose bool
	zl      *zap.Logger
	log     amp.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "amp: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{zl: zap.NewNop(), log: amp.NopLogger{}}

	rootCmd := &cobra.Command{
		Use:   "amp",
		Short: "Encode and inspect AMP binary messages",
		Long: `amp builds and decodes messages in the AMP binary format.

A message holds up to 15 typed fields (blob, string, bigint, json)
behind a one-byte version/count header.

Examples:
  amp encode
  amp encode -f order.toml -o order.bin
  amp decode order.bin
  amp encode --raw | amp decode -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zl, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.zl = zl
			a.log = zapadapter.ZapLogger{L: zl}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.zl.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		encodeCmd(a),
		decodeCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// newLogger writes console logs to stderr so stdout stays clean for
// message bytes.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}
