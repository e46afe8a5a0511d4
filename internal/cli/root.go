package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/progress"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Catalog    string
	Database   string

	// Clock overrides the wall clock (for testing). Nil means the system clock.
	Clock progress.Clock

	// Stdin overrides the command's input (for testing).
	Stdin io.Reader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flashdeck CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flashdeck",
		Short: "flashdeck - Leitner flashcards in the terminal",
		Long: `Study flashcards with a five-box Leitner schedule.

Cards come from a JSON, YAML or XLSX catalog. Progress is kept in a SQLite
database and survives catalog edits.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./flashdeck.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "path to card catalog (.json, .yaml, .yml, .xlsx)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite progress database")

	cmd.AddCommand(NewDueCommand(opts))
	cmd.AddCommand(NewFeedbackCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewStudyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
