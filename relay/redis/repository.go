package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-relay/relay"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of relay.AuditStore
 * Uses Redis Hashes for webhook record storage and a capped list for
 * recency ordering
 */

const (
	hashPrefix = "audit"        // Hash naming: audit:{request_id}
	recentKey  = "audit:recent" // List of request ids, newest first
	recentMax  = 1000           // Records kept in the recency list
)

type Repository struct {
	client *redis.Client
}

var _ relay.AuditStore = (*Repository)(nil)

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// Insert stores the pre-invocation audit record
func (r *Repository) Insert(ctx context.Context, rec relay.Record) (string, error) {
	payloadJSON, err := json.Marshal(rec.RequestPayload)
	if err != nil {
		return "", fmt.Errorf("marshaling request payload: %w", err)
	}

	hashKey := fmt.Sprintf("%s:%s", hashPrefix, rec.RequestID)
	err = r.client.HSet(ctx, hashKey, map[string]interface{}{
		"request_id":      rec.RequestID,
		"endpoint":        rec.Endpoint,
		"source_host":     rec.SourceHost,
		"user_agent":      rec.UserAgent,
		"client_ip":       rec.ClientIP,
		"request_payload": string(payloadJSON),
		"http_status":     0,
		"created_at":      rec.CreatedAt.UnixNano(),
	}).Err()
	if err != nil {
		return "", fmt.Errorf("storing audit record: %w", err)
	}

	if err := r.client.LPush(ctx, recentKey, rec.RequestID).Err(); err != nil {
		return "", fmt.Errorf("indexing audit record: %w", err)
	}
	if err := r.client.LTrim(ctx, recentKey, 0, recentMax-1).Err(); err != nil {
		return "", fmt.Errorf("trimming recency list: %w", err)
	}

	return rec.RequestID, nil
}

// UpdateResult fills the outcome fields of a stored record, write-once
func (r *Repository) UpdateResult(ctx context.Context, requestID string, responsePayload string, httpStatus int, durationMs int64) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, requestID)

	current, err := r.client.HGet(ctx, hashKey, "http_status").Result()
	if err == redis.Nil {
		return relay.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading audit record: %w", err)
	}
	if current != "0" {
		return fmt.Errorf("record %s already carries an outcome", requestID)
	}

	err = r.client.HSet(ctx, hashKey, map[string]interface{}{
		"response_payload": responsePayload,
		"http_status":      httpStatus,
		"duration_ms":      durationMs,
	}).Err()
	if err != nil {
		return fmt.Errorf("updating audit record: %w", err)
	}
	return nil
}

// Get retrieves one audit record by its request ID
func (r *Repository) Get(ctx context.Context, requestID string) (relay.Record, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, requestID)

	fields, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return relay.Record{}, fmt.Errorf("reading audit record: %w", err)
	}
	if len(fields) == 0 {
		return relay.Record{}, relay.ErrNotFound
	}
	return recordFromFields(fields)
}

// Recent returns up to limit records, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]relay.Record, error) {
	ids, err := r.client.LRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recency list: %w", err)
	}

	records := make([]relay.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err == relay.ErrNotFound {
			// Entry expired or trimmed between LRange and HGetAll
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

func recordFromFields(fields map[string]string) (relay.Record, error) {
	var rec relay.Record
	rec.RequestID = fields["request_id"]
	rec.Endpoint = fields["endpoint"]
	rec.SourceHost = fields["source_host"]
	rec.UserAgent = fields["user_agent"]
	rec.ClientIP = fields["client_ip"]
	rec.ResponsePayload = fields["response_payload"]

	if err := json.Unmarshal([]byte(fields["request_payload"]), &rec.RequestPayload); err != nil {
		return relay.Record{}, fmt.Errorf("unmarshaling request payload: %w", err)
	}
	if v := fields["http_status"]; v != "" {
		status, err := strconv.Atoi(v)
		if err != nil {
			return relay.Record{}, fmt.Errorf("parsing http status: %w", err)
		}
		rec.HTTPStatus = status
	}
	if v := fields["duration_ms"]; v != "" {
		duration, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return relay.Record{}, fmt.Errorf("parsing duration: %w", err)
		}
		rec.DurationMs = duration
	}
	if v := fields["created_at"]; v != "" {
		nanos, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return relay.Record{}, fmt.Errorf("parsing created at: %w", err)
		}
		rec.CreatedAt = time.Unix(0, nanos)
	}
	return rec, nil
}
