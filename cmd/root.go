package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/streamdl/streamdl/cmd/check"
	"github.com/streamdl/streamdl/internal/logger"
	"github.com/streamdl/streamdl/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "streamdl",
	Short: "Stream definition language compiler",
	Long: fmt.Sprintf(`streamdl compiles stream definition programs: it resolves declared
types, checks constraints and binds READ and WRITE statements.

Version: %s

Commands:
  check    Compile program files and report diagnostics
  version  Show version information

Use "streamdl [command] --help" for more information about a command.`,
		version.String()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(check.CheckCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
