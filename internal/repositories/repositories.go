// package repositories provides SQLite persistence for locally recorded
// playlist generations.
//
// The history repository handles CRUD operations with sequence generation,
// soft deletes, and track link hydration.
package repositories

import (
	"database/sql"
	"fmt"
)

// nextSequence returns the next sequence number for table within tx.
//
// Sequence numbers give entries a stable, human-readable handle (e.g., entry
// #4) independent of UUIDs and creation timestamps. Soft-deleted rows keep
// their number, so handles never renumber.
func nextSequence(tx *sql.Tx, table string) (int64, error) {
	var current int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) FROM %s", table)
	if err := tx.QueryRow(query).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}
	return current + 1, nil
}
