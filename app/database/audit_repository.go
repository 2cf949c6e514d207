package database

import (
	"fmt"
	"log/slog"
)

// AuditRepo persists refresh audit events
type AuditRepo struct {
	db *DB
}

var _ AuditRepository = (*AuditRepo)(nil)

func NewAuditRepository(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(event, feedID, detail string) error {
	_, err := r.db.Exec(`
		INSERT INTO audit_log (event, feed_id, detail)
		VALUES (?, ?, ?)
	`, event, nullString(feedID), detail)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	return nil
}

// Record implements the ingestion pipeline's fire-and-forget audit sink.
// Sink failures are logged and never propagated to the caller.
func (r *AuditRepo) Record(event, feedID, detail string) {
	if err := r.Insert(event, feedID, detail); err != nil {
		slog.Warn("Audit sink write failed", "event", event, "feed_id", feedID, "error", err)
	}
}

func (r *AuditRepo) GetRecent(limit int) ([]AuditEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, event, COALESCE(feed_id, ''), detail, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var event AuditEvent
		err := rows.Scan(&event.ID, &event.Event, &event.FeedID, &event.Detail, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return events, nil
}
