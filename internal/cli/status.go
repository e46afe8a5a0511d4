package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/progress"
)

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	progress.Summary

	// Revision counts how many times progress has been saved to the database.
	Revision int64 `json:"revision"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize progress per box",
		Long: `Show how many cards sit in each Leitner box, how many are due and how
many have graduated. With --verbose the database path and the number of
saved revisions are shown too.

Examples:
  flashdeck status
  flashdeck status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) (err error) {
	ctx := cmd.Context()
	e, err := openEnv(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(ctx); cerr != nil && err == nil {
			err = persistError(e.out, cerr)
		}
	}()

	summary := e.progress.Summary()
	rev, err := e.db.Revision(ctx, e.cfg.StorageKey)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot read progress revision", err)
	}
	if opts.Format == "json" {
		return e.out.Success(StatusResult{Summary: summary, Revision: rev})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cards:          %d\n", summary.Total)
	fmt.Fprintf(w, "Due now:        %d\n", summary.Due)
	fmt.Fprintf(w, "Never reviewed: %d\n", summary.NeverReviewed)
	fmt.Fprintf(w, "Mastered:       %d\n", summary.Mastered)
	for box := progress.MinBox; box <= progress.MaxBox; box++ {
		interval, _ := progress.IntervalMillis(box)
		fmt.Fprintf(w, "  box %d (%2dd):  %d\n", box, interval/progress.DayMillis, summary.ByBox[box])
	}
	if opts.Verbose {
		fmt.Fprintf(w, "Database:       %s (revision %d)\n", e.cfg.Database, rev)
	}
	return nil
}
