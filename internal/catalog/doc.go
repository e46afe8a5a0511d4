// Package catalog loads and validates the immutable flashcard catalog.
//
// A catalog is an ordered list of cards. Order matters: due lists, search
// results and review decks are always reported in catalog order.
//
// Supported sources:
//   - JSON: an array of cards, or an object with a "cards" array
//   - YAML: the same two shapes
//   - XLSX: first sheet, columns id/term/definition (header row optional)
//
// Every catalog, whatever its source, is checked against the embedded CUE
// schema (schema.cue) and for duplicate ids before it is handed out. A
// catalog that fails validation is fatal: nothing can be scheduled.
package catalog
