/* SQLite implementation of relay.AuditStore
 * A single webhook_log table holds one row per admitted call; the
 * post-write only ever fills a row that has no outcome yet.
 */
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marcelsud/webhook-relay/relay"
)

type Repository struct {
	DB *sql.DB
}

var _ relay.AuditStore = (*Repository)(nil)

// NewRepository opens (creating if needed) the audit database at dbPath
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	repo := &Repository{DB: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return repo, nil
}

func (r *Repository) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS webhook_log (
			request_id TEXT PRIMARY KEY,
			endpoint TEXT NOT NULL,
			source_host TEXT,
			user_agent TEXT,
			client_ip TEXT,
			request_payload TEXT NOT NULL,
			response_payload TEXT,
			http_status INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_log_created ON webhook_log(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_log_endpoint ON webhook_log(endpoint)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Insert stores the pre-invocation audit row
func (r *Repository) Insert(ctx context.Context, rec relay.Record) (string, error) {
	payload, err := json.Marshal(rec.RequestPayload)
	if err != nil {
		return "", fmt.Errorf("marshaling request payload: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO webhook_log (request_id, endpoint, source_host, user_agent, client_ip, request_payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Endpoint, rec.SourceHost, rec.UserAgent, rec.ClientIP, string(payload), rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting audit record: %w", err)
	}
	return rec.RequestID, nil
}

// UpdateResult fills the outcome fields of a pending row, write-once
func (r *Repository) UpdateResult(ctx context.Context, requestID string, responsePayload string, httpStatus int, durationMs int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE webhook_log
		 SET response_payload = ?, http_status = ?, duration_ms = ?
		 WHERE request_id = ? AND http_status = 0`,
		responsePayload, httpStatus, durationMs, requestID,
	)
	if err != nil {
		return fmt.Errorf("updating audit record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return relay.ErrNotFound
	}
	return nil
}

// Get retrieves one audit record by its request ID
func (r *Repository) Get(ctx context.Context, requestID string) (relay.Record, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT request_id, endpoint, source_host, user_agent, client_ip, request_payload, response_payload, http_status, duration_ms, created_at
		 FROM webhook_log WHERE request_id = ?`, requestID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return relay.Record{}, relay.ErrNotFound
	}
	if err != nil {
		return relay.Record{}, fmt.Errorf("selecting audit record: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]relay.Record, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT request_id, endpoint, source_host, user_agent, client_ip, request_payload, response_payload, http_status, duration_ms, created_at
		 FROM webhook_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting recent records: %w", err)
	}
	defer rows.Close()

	records := make([]relay.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent records: %w", err)
	}
	return records, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (relay.Record, error) {
	var (
		rec       relay.Record
		payload   string
		response  sql.NullString
		duration  sql.NullInt64
		createdAt time.Time
	)
	err := row.Scan(&rec.RequestID, &rec.Endpoint, &rec.SourceHost, &rec.UserAgent, &rec.ClientIP,
		&payload, &response, &rec.HTTPStatus, &duration, &createdAt)
	if err != nil {
		return relay.Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.RequestPayload); err != nil {
		return relay.Record{}, fmt.Errorf("unmarshaling request payload: %w", err)
	}
	rec.ResponsePayload = response.String
	rec.DurationMs = duration.Int64
	rec.CreatedAt = createdAt
	return rec, nil
}
