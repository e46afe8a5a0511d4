package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
)

// DueResult is the JSON payload of the due command.
type DueResult struct {
	Count int           `json:"count"`
	Cards []DueCardInfo `json:"cards"`
}

// DueCardInfo describes one due card.
type DueCardInfo struct {
	ID           int    `json:"id"`
	Term         string `json:"term"`
	Box          int    `json:"box"`
	LastReviewed int64  `json:"lastReviewed"`
}

// NewDueCommand creates the due command.
func NewDueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		Long: `List the cards due for review now, in catalog order.

Cards never reviewed are always due. Graduated cards are never due.

Examples:
  flashdeck due
  flashdeck due --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDue(rootOpts, cmd)
		},
	}
}

func runDue(opts *RootOptions, cmd *cobra.Command) (err error) {
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

	due := e.progress.DueCards()
	table := e.progress.Snapshot()
	result := DueResult{Count: len(due), Cards: make([]DueCardInfo, 0, len(due))}
	for _, c := range due {
		rec := table[c.ID]
		result.Cards = append(result.Cards, DueCardInfo{
			ID:           c.ID,
			Term:         c.Term,
			Box:          rec.Box,
			LastReviewed: rec.LastReviewed,
		})
	}

	if opts.Format == "json" {
		return e.out.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(due) == 0 {
		fmt.Fprintln(w, "Nothing due. Come back later.")
		return nil
	}
	fmt.Fprintf(w, "%d cards due:\n", len(due))
	for _, c := range due {
		fmt.Fprintf(w, "  %s\n", describeCard(c, table[c.ID], e.progress.Now()))
	}
	return nil
}

// describeCard renders "[id] term (box N, reviewed ...)".
func describeCard(c catalog.Card, rec progress.Record, now time.Time) string {
	return fmt.Sprintf("[%d] %s (box %d, %s)", c.ID, c.Term, rec.Box, describeReviewed(rec, now))
}

// describeReviewed renders how long ago a card was reviewed.
func describeReviewed(rec progress.Record, now time.Time) string {
	if !rec.Reviewed() {
		return "never reviewed"
	}
	ago := now.Sub(time.UnixMilli(rec.LastReviewed))
	switch {
	case ago < time.Minute:
		return "reviewed just now"
	case ago < time.Hour:
		return fmt.Sprintf("reviewed %dm ago", int(ago/time.Minute))
	case ago < 24*time.Hour:
		return fmt.Sprintf("reviewed %dh ago", int(ago/time.Hour))
	default:
		return fmt.Sprintf("reviewed %dd ago", int(ago/(24*time.Hour)))
	}
}
