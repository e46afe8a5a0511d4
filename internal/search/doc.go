// Package search filters and highlights the card catalog.
//
// A query is normalized (NFC, lower-cased, trimmed, inner whitespace
// collapsed) and split into terms. A card matches when every term is a
// substring of the selected fields and the card passes the difficulty and
// recency facets. Filtering never reorders the catalog.
//
// The package never mutates progress. It reads a progress.Table snapshot
// handed in by the caller.
package search
