package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Reset all progress",
		Long: `Return every card to box 1, never reviewed.

Records for cards no longer in the catalog are dropped. This cannot be
undone, so --yes is required.

Examples:
  flashdeck reset --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the reset")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) (err error) {
	if !opts.Yes {
		return NewExitError(ExitCommandError, "reset discards all progress; rerun with --yes to confirm")
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(ctx); cerr != nil && err == nil {
			err = persistError(e.out, cerr)
		}
	}()

	if rerr := e.progress.ResetAll(ctx); rerr != nil {
		return persistError(e.out, rerr)
	}

	if opts.Format == "json" {
		return e.out.Success(map[string]int{"reset": len(e.cards)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Progress reset for %d cards.\n", len(e.cards))
	return nil
}
