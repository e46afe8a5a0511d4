package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Difficulty string
	Recency    string
	Scope      string
}

// SearchResult is the JSON payload of the search command.
type SearchResult struct {
	Query   string         `json:"query"`
	Filters search.Filters `json:"filters"`
	Stats   search.Stats   `json:"stats"`
	Cards   []SearchHit    `json:"cards"`
}

// SearchHit is one matching card with highlighted text.
type SearchHit struct {
	ID         int    `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search cards by text and progress",
		Long: `Search the catalog. Every query word must appear in the term or the
definition (case-insensitive). Matches are highlighted with the configured
marker.

Filters:
  --difficulty  all | box1 .. box6 (box6 holds graduated cards)
  --recent      all | today | week | never
  --in          both | terms | definitions

Examples:
  flashdeck search access control
  flashdeck search --difficulty box1 --recent never
  flashdeck search risk --in terms --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "all", "filter by box")
	cmd.Flags().StringVar(&opts.Recency, "recent", string(search.RecencyAll), "filter by last review")
	cmd.Flags().StringVar(&opts.Scope, "in", string(search.ScopeBoth), "fields the query searches")

	return cmd
}

func runSearch(opts *SearchOptions, query string, cmd *cobra.Command) (err error) {
	filters, err := search.ParseFilters(opts.Difficulty, opts.Recency, opts.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
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

	engine := search.NewEngine(e.highlighter())
	engine.SetQuery(query)
	engine.SetFilters(filters)

	table := e.progress.Snapshot()
	now := e.progress.Now()
	cards, stats := engine.Results(e.cards, table, now)

	result := SearchResult{
		Query:   query,
		Filters: filters,
		Stats:   stats,
		Cards:   make([]SearchHit, 0, len(cards)),
	}
	for _, c := range cards {
		result.Cards = append(result.Cards, SearchHit{
			ID:         c.ID,
			Term:       engine.Highlight(c.Term),
			Definition: engine.Highlight(c.Definition),
		})
	}

	if opts.Format == "json" {
		return e.out.Success(result)
	}

	w := cmd.OutOrStdout()
	if !engine.Active() {
		fmt.Fprintf(w, "%d cards (no search or filters active)\n", stats.Total)
	} else {
		fmt.Fprintf(w, "%d of %d cards match\n", stats.Matched, stats.Total)
	}
	if len(cards) == 0 {
		fmt.Fprintln(w, "No cards match your search criteria")
		return nil
	}
	for i, hit := range result.Cards {
		rec := table[cards[i].ID]
		fmt.Fprintf(w, "[%d] %s\n", hit.ID, hit.Term)
		fmt.Fprintf(w, "    %s\n", hit.Definition)
		fmt.Fprintf(w, "    box %d, %s\n", rec.Box, describeReviewed(rec, now))
	}
	return nil
}
