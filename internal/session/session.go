package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
)

// Mode is the review mode.
type Mode string

const (
	ModeNone Mode = "none"
	ModeFull Mode = "full"
	ModeSRS  Mode = "srs"
)

// ParseMode accepts none, full and srs.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeNone, ModeFull, ModeSRS:
		return m, nil
	default:
		return "", fmt.Errorf("unknown review mode %q (want none, full or srs)", s)
	}
}

// Status messages shown to the learner.
const (
	MsgSelectMode     = "Select a mode to begin."
	MsgProgressReset  = "Progress reset. Select a mode."
	MsgSRSComplete    = "SRS Review Complete!"
	msgDeckComplete   = " - Deck Complete!"
	msgNoCards        = " - No cards to review!"
	msgShuffled       = " (Shuffled)"
	msgNoSearchResult = "No cards match your search criteria"
	msgNoCatalog      = "No flashcard data available"
)

// ErrNoCard is returned by Feedback when the deck has no current card.
var ErrNoCard = errors.New("no card to answer")

// Tracker is the part of progress.Store a session needs.
type Tracker interface {
	Cards() []catalog.Card
	DueCards() []catalog.Card
	Snapshot() progress.Table
	Now() time.Time
	Feedback(ctx context.Context, cardID int, easy bool) (progress.Record, error)
	ResetAll(ctx context.Context) error
}

// Option configures a Session.
type Option func(*Session)

// WithEngine sets the search engine consulted when building decks.
func WithEngine(e *search.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rand = r }
}

// WithIDGenerator overrides UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is one learner's review session.
//
// Thread-safety: Session is not safe for concurrent use.
type Session struct {
	tracker Tracker
	engine  *search.Engine
	rand    *rand.Rand
	ids     IDGenerator
	logger  *slog.Logger

	id      string
	mode    Mode
	deck    []catalog.Card
	index   int
	flipped bool
	message string
}

// New creates a session in ModeNone.
func New(tracker Tracker, opts ...Option) *Session {
	s := &Session{
		tracker: tracker,
		engine:  search.NewEngine(nil),
		ids:     UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		mode:    ModeNone,
		message: MsgSelectMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.ids.Generate()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Message returns the current status line.
func (s *Session) Message() string { return s.message }

// Flipped reports whether the current card shows its definition.
func (s *Session) Flipped() bool { return s.flipped }

// Engine returns the search engine used to build decks.
func (s *Session) Engine() *search.Engine { return s.engine }

// Deck returns a copy of the current deck.
func (s *Session) Deck() []catalog.Card {
	return append([]catalog.Card(nil), s.deck...)
}

// Start builds a fresh deck for mode.
//
// When the search engine is active, ModeFull reviews the matching cards and
// ModeSRS reviews the due cards that also match. Non-empty decks are
// shuffled. ModeNone clears the deck.
func (s *Session) Start(mode Mode) error {
	filtered := s.engine.Active()

	var deck []catalog.Card
	var msg string
	switch mode {
	case ModeNone:
		s.clear(ModeNone, MsgSelectMode)
		return nil

	case ModeFull:
		source := s.tracker.Cards()
		if filtered {
			source = s.filtered()
		}
		if len(source) == 0 {
			msg = msgNoCatalog
			if filtered {
				msg = msgNoSearchResult
			}
			s.clear(ModeFull, msg)
			return nil
		}
		deck = append([]catalog.Card(nil), source...)
		if filtered {
			msg = fmt.Sprintf("Filtered Review (%d cards)", len(deck))
		} else {
			msg = fmt.Sprintf("Full Deck Review (%d cards)", len(deck))
		}

	case ModeSRS:
		deck = s.tracker.DueCards()
		if filtered {
			deck = Intersect(deck, s.filtered())
			msg = fmt.Sprintf("Filtered SRS (%d due cards)", len(deck))
		} else {
			msg = fmt.Sprintf("SRS Review (%d due cards)", len(deck))
		}

	default:
		return fmt.Errorf("start: unknown review mode %q", mode)
	}

	if len(deck) == 0 {
		s.clear(mode, msg+msgNoCards)
		return nil
	}

	shuffle(s.rand, deck)
	s.mode = mode
	s.deck = deck
	s.index = 0
	s.flipped = false
	s.message = msg + msgShuffled

	s.logger.Debug("review started", "session", s.id, "mode", mode, "cards", len(deck), "filtered", filtered)
	return nil
}

// SelectCard starts a full review at cardID. The deck is the current search
// result (or the whole catalog) rotated to begin at that card.
func (s *Session) SelectCard(cardID int) error {
	card, ok := catalog.Lookup(s.tracker.Cards(), cardID)
	if !ok {
		return &progress.Error{
			Code:    progress.ErrCodeInvalidArgument,
			Message: "card id is not in the catalog",
			CardID:  cardID,
		}
	}

	source := s.tracker.Cards()
	if s.engine.Active() {
		source = s.filtered()
	}

	s.mode = ModeFull
	s.deck = Rotate(source, card)
	s.index = 0
	s.flipped = false
	s.message = fmt.Sprintf("Search Result Review (%d cards) - Starting with: %s", len(s.deck), card.Term)

	s.logger.Debug("review started at card", "session", s.id, "card", cardID, "cards", len(s.deck))
	return nil
}

// Current returns the card on screen.
func (s *Session) Current() (catalog.Card, bool) {
	if s.index < 0 || s.index >= len(s.deck) {
		return catalog.Card{}, false
	}
	return s.deck[s.index], true
}

// Position returns the 1-based position of the current card and the deck
// size. Both are 0 for an empty deck.
func (s *Session) Position() (int, int) {
	if len(s.deck) == 0 {
		return 0, 0
	}
	return s.index + 1, len(s.deck)
}

// Flip toggles between term and definition and returns the new state.
func (s *Session) Flip() bool {
	if len(s.deck) == 0 {
		return false
	}
	s.flipped = !s.flipped
	return s.flipped
}

// Next moves to the next card. At the last card it stays put, marks the
// deck complete and returns false.
func (s *Session) Next() bool {
	if s.index < len(s.deck)-1 {
		s.index++
		s.flipped = false
		return true
	}
	if len(s.deck) > 0 && !strings.Contains(s.message, "Complete!") {
		s.message += msgDeckComplete
	}
	return false
}

// Prev moves to the previous card. It returns false at the first card.
func (s *Session) Prev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	s.flipped = false
	return true
}

// Shuffle reshuffles the deck and restarts at its first card.
// Decks of fewer than two cards are left alone.
func (s *Session) Shuffle() {
	if len(s.deck) < 2 {
		return
	}
	shuffle(s.rand, s.deck)
	s.index = 0
	s.flipped = false
	if !strings.Contains(s.message, msgShuffled) {
		s.message += msgShuffled
	}
}

// Feedback answers the current card.
//
// In ModeSRS the card leaves the deck; in other modes the session advances.
// A recoverable store error still moves the session on and is returned
// alongside the new record. Any other error leaves the session unchanged.
func (s *Session) Feedback(ctx context.Context, easy bool) (progress.Record, error) {
	card, ok := s.Current()
	if !ok {
		return progress.Record{}, ErrNoCard
	}

	rec, err := s.tracker.Feedback(ctx, card.ID, easy)
	if err != nil && !progress.IsRecoverable(err) {
		return progress.Record{}, err
	}

	s.logger.Debug("answered", "session", s.id, "card", card.ID, "easy", easy, "box", rec.Box)

	if s.mode == ModeSRS {
		s.deck = without(s.deck, card.ID)
		s.flipped = false
		switch {
		case len(s.deck) == 0:
			s.message = MsgSRSComplete
			s.index = 0
		case s.index >= len(s.deck):
			s.index = len(s.deck) - 1
		}
		return rec, err
	}

	s.Next()
	return rec, err
}

// ResetProgress resets every card in the store and ends the review.
// A recoverable write error still resets the session.
func (s *Session) ResetProgress(ctx context.Context) error {
	err := s.tracker.ResetAll(ctx)
	if err != nil && !progress.IsRecoverable(err) {
		return err
	}
	s.clear(ModeNone, MsgProgressReset)
	return err
}

// Record returns the current card's progress record.
func (s *Session) Record() (progress.Record, bool) {
	card, ok := s.Current()
	if !ok {
		return progress.Record{}, false
	}
	rec, ok := s.tracker.Snapshot()[card.ID]
	return rec, ok
}

func (s *Session) filtered() []catalog.Card {
	cards, _ := s.engine.Results(s.tracker.Cards(), s.tracker.Snapshot(), s.tracker.Now())
	return cards
}

func (s *Session) clear(mode Mode, msg string) {
	s.mode = mode
	s.deck = nil
	s.index = 0
	s.flipped = false
	s.message = msg
}
