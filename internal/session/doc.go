// Package session runs one review session over the progress store.
//
// A session is in one of three modes. In ModeNone there is no deck. ModeFull
// reviews every card (or every card matching the active search) in shuffled
// order, and feedback advances to the next card. ModeSRS reviews only the
// cards that are due, and each answered card leaves the deck.
//
//	s := session.New(store, session.WithEngine(engine))
//	if err := s.Start(session.ModeSRS); err != nil { ... }
//	for card, ok := s.Current(); ok; card, ok = s.Current() {
//		s.Flip()
//		if _, err := s.Feedback(ctx, true); err != nil { ... }
//	}
package session
