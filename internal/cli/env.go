package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/config"
	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
	"github.com/roach88/flashdeck/internal/store"
)

// env is everything a command needs once config, catalog and progress are
// loaded. Close must be called to flush progress and release the database.
type env struct {
	cfg      config.Config
	cards    []catalog.Card
	db       *store.Store
	progress *progress.Store
	logger   *slog.Logger
	out      *OutputFormatter
}

// newFormatter builds an OutputFormatter for cmd's writers.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger mirrors the verbosity flag onto a stderr text handler.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// resolveConfig applies flag overrides on top of config.Resolve.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Catalog != "" {
		cfg.Catalog = opts.Catalog
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	return cfg, nil
}

// openEnv resolves config, loads the catalog, opens the database and
// initializes progress. Recoverable init problems are printed as warnings.
func openEnv(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*env, error) {
	out := newFormatter(opts, cmd)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(opts, out.GetErrWriter())

	cards, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot load catalog", err)
	}
	out.VerboseLog("Loaded %d cards from %s", len(cards), cfg.Catalog)

	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot open progress database", err)
	}

	p := progress.New(db,
		progress.WithKey(cfg.StorageKey),
		progress.WithClock(opts.Clock),
		progress.WithLogger(logger),
	)
	report, err := p.Init(ctx, cards)
	if err != nil {
		db.Close()
		if progress.IsCatalogError(err) {
			return nil, WrapExitError(ExitCommandError, "catalog rejected", err)
		}
		return nil, WrapExitError(ExitFailure, "cannot initialize progress", err)
	}
	for _, w := range report.Warnings {
		out.Warn("%v", w)
	}
	logger.Debug("progress ready", "database", cfg.Database, "found", report.Found, "dirty", report.Dirty, "cards", report.Cards)

	return &env{
		cfg:      cfg,
		cards:    cards,
		db:       db,
		progress: p,
		logger:   logger,
		out:      out,
	}, nil
}

// highlighter returns a highlighter using the configured marker.
func (e *env) highlighter() *search.Highlighter {
	return search.NewHighlighter(e.cfg.Highlight)
}

// Close flushes progress and closes the database.
func (e *env) Close(ctx context.Context) error {
	var errs []error
	if err := e.progress.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := e.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// stdin returns the input stream for interactive commands.
func stdin(opts *RootOptions, cmd *cobra.Command) io.Reader {
	if opts.Stdin != nil {
		return opts.Stdin
	}
	return cmd.InOrStdin()
}

// persistError turns a store error into an ExitError, downgrading
// recoverable ones to a warning plus ExitFailure.
func persistError(out *OutputFormatter, err error) error {
	if err == nil {
		return nil
	}
	if progress.IsRecoverable(err) {
		out.Warn("%v", err)
		return WrapExitError(ExitFailure, "progress not saved", err)
	}
	if progress.IsInvalidArgument(err) {
		return WrapExitError(ExitCommandError, "invalid argument", err)
	}
	return WrapExitError(ExitFailure, "operation failed", err)
}
