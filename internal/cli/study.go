package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
	"github.com/roach88/flashdeck/internal/session"
)

// StudyOptions holds flags for the study command.
type StudyOptions struct {
	*RootOptions
	Mode       string
	Query      string
	Difficulty string
	Recency    string
	Scope      string
	Start      int
	Seed       uint64
}

const studyHelp = `Commands:
  f          flip the card
  e | h      answer easy or hard
  n | p      next or previous card
  s          shuffle the deck
  m <mode>   start a new review (full or srs)
  g <id>     review the current results starting at card <id>
  /<query>   set the search query (empty clears it)
  filter [<difficulty> [<recent> [<in>]]]
             set the search filters (no arguments resets them)
  reset      reset all progress
  ?          show this help
  q          quit`

// NewStudyCommand creates the study command.
func NewStudyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StudyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Review cards interactively",
		Long: `Start an interactive review session.

In srs mode only due cards are shown and each answered card leaves the deck.
In full mode every card (or every search result) is shown in turn. A search
query or filter narrows either mode.

` + studyHelp + `

Examples:
  flashdeck study
  flashdeck study --mode full --query "access control"
  flashdeck study --start 12`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "review mode: full or srs (default from config)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "search query narrowing the deck")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "all", "filter by box")
	cmd.Flags().StringVar(&opts.Recency, "recent", string(search.RecencyAll), "filter by last review")
	cmd.Flags().StringVar(&opts.Scope, "in", string(search.ScopeBoth), "fields the query searches")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "start a full review at this card id")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed (0 picks a random one)")

	return cmd
}

func runStudy(opts *StudyOptions, cmd *cobra.Command) (err error) {
	if opts.Format == "json" {
		return NewExitError(ExitCommandError, "study is interactive and only supports text output")
	}
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

	mode := opts.Mode
	if mode == "" {
		mode = e.cfg.Mode
	}
	m, err := session.ParseMode(mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mode", err)
	}

	engine := search.NewEngine(e.highlighter())
	engine.SetQuery(opts.Query)
	engine.SetFilters(filters)

	sopts := []session.Option{session.WithEngine(engine), session.WithLogger(e.logger)}
	if opts.Seed != 0 {
		sopts = append(sopts, session.WithRand(rand.New(rand.NewPCG(opts.Seed, opts.Seed))))
	}
	s := session.New(e.progress, sopts...)
	e.logger.Debug("session opened", "session", s.ID())

	if opts.Start != 0 {
		err = s.SelectCard(opts.Start)
	} else {
		err = s.Start(m)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot start review", err)
	}

	st := &studyLoop{session: s, out: e.out, w: cmd.OutOrStdout()}
	return st.run(ctx, stdin(opts.RootOptions, cmd))
}

// studyLoop drives a session from line-oriented input.
type studyLoop struct {
	session *session.Session
	out     *OutputFormatter
	w       io.Writer
	unsaved bool
}

func (l *studyLoop) run(ctx context.Context, in io.Reader) error {
	l.show()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(l.w, "> ")
		if !scanner.Scan() {
			break
		}
		if quit := l.handle(ctx, strings.TrimSpace(scanner.Text())); quit {
			break
		}
	}
	fmt.Fprintln(l.w)
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitFailure, "read input", err)
	}
	if l.unsaved {
		return NewExitError(ExitFailure, "some answers were not saved")
	}
	return nil
}

// handle executes one input line and reports whether to quit.
func (l *studyLoop) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		cmd, arg = "/", rest
	}
	arg = strings.TrimSpace(arg)
	s := l.session

	switch cmd {
	case "":
		return false
	case "q", "quit":
		return true
	case "?", "help":
		fmt.Fprintln(l.w, studyHelp)
		return false
	case "f", "flip":
		if s.Flip() {
			l.showDefinition()
		} else {
			l.show()
		}
		return false
	case "e", "easy", "h", "hard":
		rec, err := s.Feedback(ctx, cmd == "e" || cmd == "easy")
		if !l.report(err) {
			return false
		}
		fmt.Fprintf(l.w, "box %d\n", rec.Box)
	case "n", "next":
		s.Next()
	case "p", "prev":
		s.Prev()
	case "s", "shuffle":
		s.Shuffle()
	case "m", "mode":
		m, err := session.ParseMode(arg)
		if err != nil {
			l.out.Warn("%v", err)
			return false
		}
		if err := s.Start(m); err != nil {
			l.out.Warn("%v", err)
			return false
		}
	case "g", "go":
		id, err := strconv.Atoi(arg)
		if err != nil {
			l.out.Warn("invalid card id %q", arg)
			return false
		}
		if err := s.SelectCard(id); err != nil {
			l.out.Warn("%v", err)
			return false
		}
	case "/":
		s.Engine().SetQuery(arg)
		fmt.Fprintf(l.w, "query set to %q; start a review with m or g\n", arg)
		return false
	case "filter":
		filters, err := parseFilterArgs(strings.Fields(arg))
		if err != nil {
			l.out.Warn("%v", err)
			return false
		}
		s.Engine().SetFilters(filters)
		fmt.Fprintf(l.w, "filters set to %s/%s/%s; start a review with m or g\n",
			filters.Difficulty, filters.Recency, filters.Scope)
		return false
	case "reset":
		if !l.report(s.ResetProgress(ctx)) {
			return false
		}
	default:
		l.out.Warn("unknown command %q (? for help)", cmd)
		return false
	}
	l.show()
	return false
}

// parseFilterArgs reads difficulty, recency and scope in that order.
// Missing selectors keep their defaults.
func parseFilterArgs(args []string) (search.Filters, error) {
	if len(args) > 3 {
		return search.Filters{}, fmt.Errorf("filter takes at most 3 selectors, got %d", len(args))
	}
	sel := make([]string, 3)
	copy(sel, args)
	return search.ParseFilters(sel[0], sel[1], sel[2])
}

// report prints err and reports whether the session moved on.
func (l *studyLoop) report(err error) bool {
	switch {
	case err == nil:
		return true
	case progress.IsRecoverable(err):
		l.unsaved = true
		l.out.Warn("%v", err)
		return true
	default:
		l.out.Warn("%v", err)
		return false
	}
}

func (l *studyLoop) show() {
	s := l.session
	fmt.Fprintln(l.w, s.Message())
	card, ok := s.Current()
	if !ok {
		return
	}
	pos, total := s.Position()
	fmt.Fprintf(l.w, "(%d/%d) %s\n", pos, total, s.Engine().Highlight(card.Term))
}

func (l *studyLoop) showDefinition() {
	card, ok := l.session.Current()
	if !ok {
		return
	}
	fmt.Fprintf(l.w, "  %s\n", l.session.Engine().Highlight(card.Definition))
}
