package fplsync

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pitchmetrics/fpl-ingest/internal/db"
)

// LogEntry represents a row in fpl.ingest_log.
type LogEntry struct {
	ID          int64      `json:"id"`
	Unit        string     `json:"unit"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RowsWritten int64      `json:"rows_written"`
	Error       string     `json:"error,omitempty"`
}

// IngestLog records one row per ingested unit (a season, a live round, or a
// fixture load) in fpl.ingest_log. Entries are written outside the unit's
// transaction so failures stay visible after rollback.
type IngestLog struct {
	pool db.Pool
}

// NewIngestLog creates an IngestLog backed by the given connection pool.
func NewIngestLog(pool db.Pool) *IngestLog {
	return &IngestLog{pool: pool}
}

// Start records the beginning of a unit's ingestion and returns its ID.
func (l *IngestLog) Start(ctx context.Context, unit string) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO fpl.ingest_log (unit, status, started_at)
		 VALUES ($1, 'running', now()) RETURNING id`,
		unit,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "ingestlog: start %s", unit)
	}
	return id, nil
}

// Complete marks a unit as successfully ingested.
func (l *IngestLog) Complete(ctx context.Context, id int64, rowsWritten int64) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE fpl.ingest_log
		 SET status = 'complete', completed_at = now(), rows_written = $1
		 WHERE id = $2`,
		rowsWritten, id,
	)
	if err != nil {
		return eris.Wrapf(err, "ingestlog: complete %d", id)
	}
	return nil
}

// Fail marks a unit as failed with an error message.
func (l *IngestLog) Fail(ctx context.Context, id int64, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE fpl.ingest_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "ingestlog: fail %d", id)
	}
	return nil
}

// ListAll returns all log entries, most recent first.
func (l *IngestLog) ListAll(ctx context.Context) ([]LogEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, unit, status, started_at, completed_at, rows_written, COALESCE(error, '')
		 FROM fpl.ingest_log ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "ingestlog: list")
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Unit, &e.Status, &e.StartedAt, &e.CompletedAt, &e.RowsWritten, &e.Error); err != nil {
			return nil, eris.Wrap(err, "ingestlog: scan entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
