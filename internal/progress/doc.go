// Package progress implements the Leitner progress store.
//
// Each card in the catalog owns exactly one Record: a box in [1, 6] and the
// time of its last review in milliseconds since the epoch (0 = never).
// Boxes 1-5 are scheduled with fixed intervals of 1, 3, 7, 14 and 30 days;
// box 6 is graduated and never due, although a hard answer still sends it
// back to box 1.
//
// # Lifecycle
//
//	st := progress.New(backend, progress.WithClock(clock))
//	report, err := st.Init(ctx, cards) // err is fatal (bad catalog)
//	for _, w := range report.Warnings { ... } // recoverable
//	rec, err := st.Feedback(ctx, id, true)
//	defer st.Close(ctx)
//
// # Persistence
//
// The whole Table is serialized as one JSON object under a single backend
// key and rewritten after every mutation (last writer wins). The stored blob
// is untrusted: Reconcile validates it field by field, repairs what it can,
// and discards it entirely when it is not a JSON object.
//
// A failed write never rolls back memory. The in-memory table stays
// authoritative for the session, the store remains dirty, and the caller gets
// a recoverable PERSIST_WRITE error. Flush and Close retry the write.
package progress
