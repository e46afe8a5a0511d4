package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
)

// Reconcile builds a Table from a persisted snapshot and the catalog.
//
// Rules:
//   - every catalog id ends up with exactly one valid record
//   - a missing record is inserted as DefaultRecord
//   - a non-numeric or out-of-range box becomes MinBox
//   - a non-numeric or negative lastReviewed becomes 0; one after now becomes now
//   - records for ids outside the catalog are kept if valid, dropped otherwise
//   - keys that are not canonical positive integers are dropped
//
// dirty is true when anything was inserted, repaired or dropped, or when raw
// was empty or discarded. Reconciling the encoded output again yields the
// same table with dirty == false.
//
// A snapshot that is not a JSON object is discarded as a whole and reported
// as a recoverable SNAPSHOT_READ error alongside the fully defaulted table.
// An invalid catalog returns a fatal CATALOG error and a nil table.
func Reconcile(cards []catalog.Card, raw []byte, now time.Time) (Table, bool, error) {
	if err := catalog.Validate(cards); err != nil {
		return nil, false, newCatalogError(err)
	}

	nowMillis := now.UnixMilli()
	table := make(Table, len(cards))
	dirty := false
	var warn error

	var entries map[string]any
	if len(bytes.TrimSpace(raw)) == 0 {
		dirty = true
	} else {
		obj, err := decodeSnapshot(raw)
		if err != nil {
			warn = newSnapshotError(err)
			dirty = true
		} else {
			entries = obj
		}
	}

	inCatalog := make(map[int]bool, len(cards))
	for _, c := range cards {
		inCatalog[c.ID] = true
	}

	for key, value := range entries {
		id, ok := parseID(key)
		if !ok {
			dirty = true
			continue
		}

		rec, repaired := repairRecord(value, nowMillis)
		if repaired {
			dirty = true
			if !inCatalog[id] {
				continue
			}
		}
		table[id] = rec
	}

	for _, c := range cards {
		if _, ok := table[c.ID]; !ok {
			table[c.ID] = DefaultRecord()
			dirty = true
		}
	}

	return table, dirty, warn
}

// Encode serializes a table in the persisted format:
//
//	{"1":{"box":2,"lastReviewed":1700000000000}, ...}
func Encode(t Table) ([]byte, error) {
	out := make(map[string]Record, len(t))
	for id, rec := range t {
		out[strconv.Itoa(id)] = rec
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses raw into an untyped JSON object.
// Numbers are kept as json.Number so integer checks are exact.
func decodeSnapshot(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse snapshot: trailing data after JSON value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse snapshot: expected object, got %s", jsonKind(v))
	}
	return obj, nil
}

// parseID accepts only canonical decimal ids so "01" and "1" cannot collide.
func parseID(key string) (int, bool) {
	id, err := strconv.Atoi(key)
	if err != nil || id < 1 || strconv.Itoa(id) != key {
		return 0, false
	}
	return id, true
}

// repairRecord validates one untrusted record value field by field.
func repairRecord(value any, nowMillis int64) (Record, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return DefaultRecord(), true
	}

	rec := DefaultRecord()
	repaired := false

	box, ok := integer(obj["box"])
	if ok && box >= MinBox && box <= GraduatedBox {
		rec.Box = int(box)
	} else {
		repaired = true
	}

	last, ok := integer(obj["lastReviewed"])
	switch {
	case !ok || last < 0:
		repaired = true
	case last > nowMillis:
		rec.LastReviewed = nowMillis
		repaired = true
	default:
		rec.LastReviewed = last
	}

	return rec, repaired
}

// integer extracts an integral value from a decoded JSON number.
func integer(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > float64(math.MaxInt64>>1) {
		return 0, false
	}
	return int64(f), true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
