package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravel-run/ravel/internal/cli"
	"github.com/ravel-run/ravel/internal/logger"
	"github.com/ravel-run/ravel/pkg/script"
)

var (
	projectFile string
	verbose     bool
	logLevel    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(script.ExitCode(err))
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ravel",
		Short: "A YAML-driven command shortcut runner",
		Long: `ravel runs named command shortcuts and verified file downloads
from a ravel.yaml project file:
- run project shortcuts: ravel run server
- download file groups with integrity checks: ravel download assets
- scaffold new projects: ravel new`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.InitLogger(logLevel)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&projectFile, "file", "f", "", "project file path (default: ravel.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Set up CLI pkg variables
	cli.ProjectFile = &projectFile
	cli.Verbose = &verbose
	cli.LogLevel = &logLevel

	// Add subcommands
	cmd.AddCommand(
		cli.NewRunCmd(),
		cli.NewXCmd(),
		cli.NewDownloadCmd(),
		cli.NewListCmd(),
		cli.NewNewCmd(),
		cli.NewSampleCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
