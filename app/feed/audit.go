package feed

// AuditSink receives fire-and-forget refresh events. Implementations must
// never propagate their own failures into the ingestion pipeline.
type AuditSink interface {
	Record(event, feedID, detail string)
}

// NopAuditSink discards events. Used when no audit store is wired.
type NopAuditSink struct{}

func (NopAuditSink) Record(event, feedID, detail string) {}

const (
	AuditFeedRefreshed     = "feed_refreshed"
	AuditFeedRefreshFailed = "feed_refresh_failed"
)
