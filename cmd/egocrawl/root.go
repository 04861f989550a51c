package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/egocrawl/internal/pipeline"
)

// Exit statuses.
const (
	// exitOK is returned when the command succeeded. A crawl succeeds even
	// when single profiles were skipped after soft failures.
	exitOK = 0

	// exitRetryExhausted is returned when every scheduled crawl attempt failed.
	exitRetryExhausted = 1

	// exitError is returned for every other error (bad flags, unreadable
	// files, an interrupted run).
	exitError = 2
)

// NewRootCmd creates the root command for egocrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "egocrawl",
		Short: "Resumable ego-network crawler for Facebook and Instagram",
		Long: `egocrawl collects the connections of seed profiles and of their
highest-ranked neighbors through a logged-in browser session.

Every seed gets its own graph store. A crawl that is interrupted, or whose
browser session gets challenged, resumes from the store on the next attempt
instead of starting over.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .egocrawl in current or home directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewFrontierCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitCode(err)
}

// exitCode maps a command error to an exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pipeline.ErrRetryExhausted):
		return exitRetryExhausted
	default:
		return exitError
	}
}
