package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
)

// DefaultKey is the backend key the table is stored under.
const DefaultKey = "flashcardProgress_v2"

// Backend is a durable slot of named blobs.
// Read returns found == false (and no error) when the key has never been written.
type Backend interface {
	Read(ctx context.Context, key string) (value []byte, found bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides the wall clock used for review timestamps.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// InitReport describes the outcome of Init.
type InitReport struct {
	// Found is true if the backend held a snapshot.
	Found bool

	// Dirty is true if reconciliation changed anything.
	Dirty bool

	// Cards is the number of catalog cards tracked.
	Cards int

	// Warnings holds recoverable SNAPSHOT_READ and PERSIST_WRITE errors.
	Warnings []error
}

// Err joins the warnings, or returns nil if there are none.
func (r InitReport) Err() error {
	return errors.Join(r.Warnings...)
}

// Store owns the progress table for one catalog.
//
// Thread-safety: all methods are safe for concurrent use; the table is
// guarded by an internal mutex and each feedback replaces one record whole.
// The expected use is a single session issuing one command at a time.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	key     string
	clock   Clock
	logger  *slog.Logger

	cards  []catalog.Card
	index  map[int]int
	table  Table
	ready  bool
	dirty  bool
	closed bool

	// unread is set when the backend could not be read at Init. The
	// defaults in memory are not written back until a mutation or an
	// explicit Flush, so a transient read error cannot erase saved progress.
	unread bool
}

// New creates an uninitialized store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		clock:   SystemClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted snapshot, reconciles it against cards, and
// persists the result when reconciliation changed anything. When the backend
// read itself fails the defaults stay in memory, dirty but unwritten.
//
// The returned error is fatal (bad catalog, closed store). Recoverable
// problems are reported in InitReport.Warnings and the store is usable.
// Init may be called again to reload, e.g. after the catalog changed.
func (s *Store) Init(ctx context.Context, cards []catalog.Card) (InitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return InitReport{}, ErrClosed
	}
	if err := catalog.Validate(cards); err != nil {
		s.logger.Error("invalid catalog", "error", err)
		return InitReport{}, newCatalogError(err)
	}

	report := InitReport{Cards: len(cards)}

	raw, found, err := s.backend.Read(ctx, s.key)
	unread := err != nil
	if unread {
		s.logger.Warn("reading saved progress failed", "key", s.key, "error", err)
		report.Warnings = append(report.Warnings, newSnapshotError(err))
		raw, found = nil, false
	}
	report.Found = found

	table, dirty, warn := Reconcile(cards, raw, s.clock.Now())
	if warn != nil {
		if IsCatalogError(warn) {
			return InitReport{}, warn
		}
		s.logger.Warn("discarding saved progress", "key", s.key, "error", warn)
		report.Warnings = append(report.Warnings, warn)
	}
	report.Dirty = dirty

	s.cards = append([]catalog.Card(nil), cards...)
	s.index = catalog.Index(cards)
	s.table = table
	s.ready = true
	s.dirty = dirty
	s.unread = unread

	s.logger.Debug("progress initialized", "cards", len(cards), "found", found, "dirty", dirty)

	if dirty && !unread {
		if err := s.persistLocked(ctx); err != nil {
			report.Warnings = append(report.Warnings, err)
		}
	}

	return report, nil
}

// Feedback records an answer for cardID.
//
// Easy moves the card up one box (capped at GraduatedBox), hard resets it to
// MinBox. The review time is captured from the clock at call time.
//
// Invalid arguments return an INVALID_ARGUMENT error and mutate nothing. A
// PERSIST_WRITE error means the new record is applied in memory but may not
// have reached the backend; the returned Record is valid in that case.
func (s *Store) Feedback(ctx context.Context, cardID int, easy bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return Record{}, err
	}
	if cardID <= 0 {
		s.logger.Warn("feedback rejected", "card", cardID, "reason", "non-positive card id")
		return Record{}, newInvalidArgument(cardID, "card id must be positive")
	}
	if _, ok := s.index[cardID]; !ok {
		s.logger.Warn("feedback rejected", "card", cardID, "reason", "unknown card id")
		return Record{}, newInvalidArgument(cardID, "card id is not in the catalog")
	}

	prev := s.table[cardID]
	next := prev.Apply(easy, s.clock.Now())
	s.table[cardID] = next
	s.dirty = true

	s.logger.Debug("feedback", "card", cardID, "easy", easy, "from", prev.Box, "to", next.Box)

	if err := s.persistLocked(ctx); err != nil {
		return next, err
	}
	return next, nil
}

// ResetAll returns every catalog card to DefaultRecord and drops records for
// cards no longer in the catalog. It does not ask for confirmation.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return err
	}

	table := make(Table, len(s.cards))
	for _, c := range s.cards {
		table[c.ID] = DefaultRecord()
	}
	s.table = table
	s.dirty = true

	s.logger.Info("all progress reset", "cards", len(s.cards))

	return s.persistLocked(ctx)
}

// DueCards returns the cards due now, in catalog order.
// Before Init it returns an empty list.
func (s *Store) DueCards() []catalog.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return []catalog.Card{}
	}
	return DueCards(s.cards, s.table, s.clock.Now())
}

// Snapshot returns a copy of the table. Before Init it is empty.
func (s *Store) Snapshot() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return Table{}
	}
	return s.table.Clone()
}

// Record returns the record for cardID.
func (s *Store) Record(cardID int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.table[cardID]
	return rec, ok
}

// Cards returns the catalog the store was initialized with.
func (s *Store) Cards() []catalog.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]catalog.Card(nil), s.cards...)
}

// Summary summarizes the current table.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Summarize(s.cards, s.table, s.clock.Now())
}

// Now reads the store's clock.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Dirty reports whether the table has changes the backend has not accepted.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dirty
}

// Flush retries persisting a dirty table. It is a no-op when clean.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return err
	}
	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx)
}

// Close flushes pending changes and tears the store down. Later calls
// return ErrClosed. Closing twice is a no-op. Defaults loaded after a failed
// read are not flushed unless something was answered or reset since.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	var err error
	if s.ready && s.dirty && !s.unread {
		err = s.persistLocked(ctx)
	}
	s.closed = true
	s.ready = false
	return err
}

func (s *Store) usableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.ready {
		return ErrNotReady
	}
	return nil
}

// persistLocked writes the whole table. On failure the store stays dirty
// and memory is left untouched.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := Encode(s.table)
	if err != nil {
		s.logger.Error("encoding progress failed", "error", err)
		return newWriteError(err)
	}

	if err := s.backend.Write(ctx, s.key, data); err != nil {
		s.logger.Warn("saving progress failed", "key", s.key, "error", err)
		return newWriteError(err)
	}

	s.dirty = false
	s.unread = false
	return nil
}
