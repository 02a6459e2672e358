package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/shared"
)

const historyColumns = `
	SELECT id, seq, name, url, mode, mood_text, goal_text, stages, tracks_requested, tracks_added, note, created_at
	FROM mood_history
`

// HistoryRepository persists generation outcomes in the mood_history table.
//
// Entries and their fallback track links are written atomically. Lookups by
// ID or sequence number hydrate links; List skips them for cheap rendering.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new history entry with a generated ID and sequence number,
// along with its fallback track links. The entry comes back with ID, Seq, and
// CreatedAt filled in.
func (r *HistoryRepository) Create(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSequence(tx, "mood_history")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	entry.ID = shared.GenerateID()
	entry.Seq = seq
	entry.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO mood_history (id, seq, name, url, mode, mood_text, goal_text, stages, tracks_requested, tracks_added, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		entry.ID,
		entry.Seq,
		entry.Name,
		entry.URL,
		entry.Mode,
		entry.MoodText,
		entry.GoalText,
		entry.Stages,
		entry.TracksRequested,
		entry.TracksAdded,
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}

	for position, link := range entry.Links {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO track_links (id, history_id, position, name, artist, url) VALUES (?, ?, ?, ?, ?, ?)",
			shared.GenerateID(), entry.ID, position, link.Name, link.Artist, link.URL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert track link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit history entry: %w", err)
	}

	return entry, nil
}

// Get retrieves a history entry by ID with its track links, excluding
// soft-deleted entries.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	query := historyColumns + "WHERE id = ? AND deleted_at IS NULL"

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, shared.ErrHistoryNotFound) {
		return nil, fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachLinks(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetBySeq retrieves a history entry by its sequence number, the handle shown
// in list output.
func (r *HistoryRepository) GetBySeq(ctx context.Context, seq int64) (*models.HistoryEntry, error) {
	query := historyColumns + "WHERE seq = ? AND deleted_at IS NULL"

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, seq))
	if errors.Is(err, shared.ErrHistoryNotFound) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrHistoryNotFound, seq)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachLinks(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries newest first, excluding soft-deleted ones. A limit of
// zero or less returns everything. Track links are not hydrated; use Get for
// the full record.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	query := historyColumns + "WHERE deleted_at IS NULL ORDER BY seq DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Delete soft-deletes a history entry by ID.
func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE mood_history
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
	}

	return nil
}

// Clear soft-deletes every remaining entry and reports how many it removed.
func (r *HistoryRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE mood_history SET deleted_at = ? WHERE deleted_at IS NULL",
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// attachLinks hydrates the fallback track links for one entry, ordered by
// their original position.
func (r *HistoryRepository) attachLinks(ctx context.Context, entry *models.HistoryEntry) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, artist, url FROM track_links WHERE history_id = ? ORDER BY position ASC",
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query track links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			link   models.TrackLink
			artist sql.NullString
			url    sql.NullString
		)
		if err := rows.Scan(&link.Name, &artist, &url); err != nil {
			return fmt.Errorf("failed to scan track link: %w", err)
		}
		link.Artist = artist.String
		link.URL = url.String
		entry.Links = append(entry.Links, link)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// rowScanner abstracts over sql.Row and sql.Rows so single and multi row
// queries share one scan path.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.HistoryEntry, error) {
	var (
		entry models.HistoryEntry
		url   sql.NullString
		note  sql.NullString
	)

	err := row.Scan(
		&entry.ID,
		&entry.Seq,
		&entry.Name,
		&url,
		&entry.Mode,
		&entry.MoodText,
		&entry.GoalText,
		&entry.Stages,
		&entry.TracksRequested,
		&entry.TracksAdded,
		&note,
		&entry.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	entry.URL = url.String
	entry.Note = note.String
	return &entry, nil
}
