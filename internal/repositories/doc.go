// Package repositories implements SQLite persistence for the local history
// store.
//
// [HistoryRepository] records one row per created playlist. Soft deletes via
// deleted_at timestamps keep removed entries out of queries without losing
// their sequence numbers. Fallback track links live in the track_links table
// and are written in the same transaction as their entry, then hydrated on
// [HistoryRepository.Get] and [HistoryRepository.GetBySeq].
//
// Sequence numbers provide stable, human-readable handles (e.g., entry #4)
// independent of UUIDs and creation timestamps. They are what list output and
// the show/delete commands accept.
package repositories
