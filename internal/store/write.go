package store

import (
	"context"
	"fmt"
)

// Write stores value under key, replacing any previous value whole.
// The row's revision is incremented on every overwrite.
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = blobs.revision + 1,
			updated_at = excluded.updated_at
	`,
		key,
		value,
		s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", key, err)
	}

	return nil
}
