package relay

import (
	"context"
	"errors"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// ErrNotFound is returned when a record does not exist in the audit store
var ErrNotFound = errors.New("record not found")

// Reader provides read operations over the audit log
type Reader interface {
	Get(ctx context.Context, requestID string) (Record, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// Writer provides the two mutations the pipeline performs
type Writer interface {
	/* Insert creates the audit row before invocation begins (pre-write)
	 * Returns the request ID the row is keyed by
	 */
	Insert(ctx context.Context, rec Record) (string, error)
	/* UpdateResult records the final outcome of an invocation (post-write)
	 * Outcome fields are write-once: a row that already carries a status
	 * is never overwritten
	 */
	UpdateResult(ctx context.Context, requestID string, responsePayload string, httpStatus int, durationMs int64) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type AuditStore interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
