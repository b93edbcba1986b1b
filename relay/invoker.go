package relay

import (
	"context"
	"time"
)

// RawResponse carries the decoded remote response body plus the
// transport-level status code, uninterpreted.
type RawResponse struct {
	Status int
	Body   any
}

// Invoker issues the single outbound call to the scripting backend.
// A returned error means transport failure (connection refused, timeout,
// undecodable response envelope). A non-2xx status with a well-formed
// body is NOT an error; it is returned normally so the result normalizer
// can still extract a script-level outcome.
type Invoker interface {
	Invoke(ctx context.Context, param string) (RawResponse, error)
}

// Observer receives pipeline lifecycle measurements.
// Implementations must tolerate concurrent calls.
type Observer interface {
	RequestAdmitted(ctx context.Context)
	RemoteCallStarted(ctx context.Context)
	RemoteCallFinished(ctx context.Context, elapsed time.Duration, status int, failed bool)
}
