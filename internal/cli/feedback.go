package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/progress"
)

// FeedbackOptions holds flags for the feedback command.
type FeedbackOptions struct {
	*RootOptions
	Easy bool
	Hard bool
}

// FeedbackResult is the JSON payload of the feedback command.
type FeedbackResult struct {
	CardID       int    `json:"card_id"`
	Easy         bool   `json:"easy"`
	Box          int    `json:"box"`
	LastReviewed int64  `json:"lastReviewed"`
	Graduated    bool   `json:"graduated"`
	NextDue      *int64 `json:"next_due,omitempty"`
}

// NewFeedbackCommand creates the feedback command.
func NewFeedbackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedbackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feedback <card-id> (--easy | --hard)",
		Short: "Record an answer for one card",
		Long: `Record whether a card was easy or hard.

Easy moves the card up one box (box 5 graduates it). Hard sends it back to
box 1. The review time is now.

Exit codes:
  0 - Answer recorded and saved
  1 - Answer recorded but progress could not be saved
  2 - Command error (unknown card, missing flag, etc.)

Examples:
  flashdeck feedback 12 --easy
  flashdeck feedback 12 --hard`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Easy, "easy", false, "the card was easy")
	cmd.Flags().BoolVar(&opts.Hard, "hard", false, "the card was hard")
	cmd.MarkFlagsMutuallyExclusive("easy", "hard")
	cmd.MarkFlagsOneRequired("easy", "hard")

	return cmd
}

func runFeedback(opts *FeedbackOptions, rawID string, cmd *cobra.Command) (err error) {
	cardID, err := strconv.Atoi(rawID)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid card id %q", rawID), err)
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

	rec, ferr := e.progress.Feedback(ctx, cardID, opts.Easy)
	if ferr != nil && !progress.IsRecoverable(ferr) {
		return persistError(e.out, ferr)
	}

	result := FeedbackResult{
		CardID:       cardID,
		Easy:         opts.Easy,
		Box:          rec.Box,
		LastReviewed: rec.LastReviewed,
		Graduated:    rec.Graduated(),
	}
	if next, ok := rec.NextDue(); ok {
		result.NextDue = &next
	}

	if opts.Format == "json" {
		if ferr != nil {
			if werr := e.out.Success(result, ferr.Error()); werr != nil {
				return werr
			}
			return WrapExitError(ExitFailure, "progress not saved", ferr)
		}
		return e.out.Success(result)
	}

	w := cmd.OutOrStdout()
	switch {
	case result.Graduated:
		fmt.Fprintf(w, "Card %d graduated.\n", cardID)
	case result.NextDue != nil:
		fmt.Fprintf(w, "Card %d moved to box %d, next due %s.\n",
			cardID, rec.Box, time.UnixMilli(*result.NextDue).UTC().Format(time.DateTime)+" UTC")
	default:
		fmt.Fprintf(w, "Card %d is in box %d.\n", cardID, rec.Box)
	}
	return persistError(e.out, ferr)
}
