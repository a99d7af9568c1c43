package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitEmpty   = 3
)

// Version is set at build time via -ldflags
var Version = "dev"

// exitError ends the process with code without printing an error
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalOptions holds the flags shared by every subcommand
type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	global := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "fis-results",
		Short: "Scrape FIS alpine race results",
		Long: `A CLI tool to fetch a FIS race result page and turn it into
normalized records: rank, bib, name, nation, time and FIS points.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&global.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&global.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newScrapeCmd(global),
		newServeCmd(global),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fis-results %s\n", Version)
		},
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()

	var exit *exitError
	switch {
	case errors.As(err, &exit):
		os.Exit(exit.code)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
