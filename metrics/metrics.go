package metrics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

/* Collector holds the process-lifetime relay counters and the remote
 * call latency histogram. It is constructed once at process start and
 * injected into the pipeline, never referenced as ambient state.
 * All counters reset only on process restart; nothing is persisted.
 */

// DurationBuckets are the latency histogram upper bounds in seconds.
// Values above the last bound land in the overflow bucket.
var DurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Snapshot is a point-in-time copy of the collector state.
type Snapshot struct {
	// RequestCount is the number of calls admitted by the pipeline
	RequestCount uint64 `json:"request_count"`

	// RemoteCallCount is the number of outbound invocations started
	RemoteCallCount uint64 `json:"remote_call_count"`

	// RemoteErrorCount is the number of calls that ended in FAILED
	RemoteErrorCount uint64 `json:"remote_error_count"`

	// StatusCounts maps relayed HTTP status code to occurrence count
	StatusCounts map[int]uint64 `json:"status_counts"`

	// LatencyBuckets are cumulative counts aligned to DurationBuckets,
	// with one trailing overflow bucket
	LatencyBuckets []uint64 `json:"latency_buckets"`

	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`
}

type Collector struct {
	requestCount     atomic.Uint64
	remoteCallCount  atomic.Uint64
	remoteErrorCount atomic.Uint64

	mu           sync.Mutex
	statusCounts map[int]uint64
	buckets      []uint64 // per-bucket counts, overflow at the end

	requests     metric.Int64Counter
	remoteCalls  metric.Int64Counter
	remoteErrors metric.Int64Counter
	responses    metric.Int64Counter
	latency      metric.Float64Histogram
}

/* NewCollector creates the collector and registers its OTel instruments
 * on the global meter provider. Without an exporter installed the
 * instruments are no-ops, so tests can construct a collector freely.
 */
func NewCollector() (*Collector, error) {
	meter := otel.Meter(
		"webhook-relay",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	c := &Collector{
		statusCounts: make(map[int]uint64),
		buckets:      make([]uint64, len(DurationBuckets)+1),
	}

	var err error
	c.requests, err = meter.Int64Counter(
		"relay.requests",
		metric.WithDescription("Webhook calls admitted by the pipeline"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	c.remoteCalls, err = meter.Int64Counter(
		"relay.remote.calls",
		metric.WithDescription("Outbound script invocations started"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating remote calls counter: %w", err)
	}

	c.remoteErrors, err = meter.Int64Counter(
		"relay.remote.errors",
		metric.WithDescription("Outbound script invocations that failed"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating remote errors counter: %w", err)
	}

	c.responses, err = meter.Int64Counter(
		"relay.responses",
		metric.WithDescription("Relayed responses by HTTP status"),
		metric.WithUnit("{responses}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating responses counter: %w", err)
	}

	c.latency, err = meter.Float64Histogram(
		"relay.remote.duration",
		metric.WithDescription("Remote script round trip duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}

	return c, nil
}

// RequestAdmitted counts one admitted call
func (c *Collector) RequestAdmitted(ctx context.Context) {
	c.requestCount.Add(1)
	c.requests.Add(ctx, 1)
}

// RemoteCallStarted counts one outbound invocation attempt
func (c *Collector) RemoteCallStarted(ctx context.Context) {
	c.remoteCallCount.Add(1)
	c.remoteCalls.Add(ctx, 1)
}

// RemoteCallFinished records the outcome of one call that reached a
// terminal state, exactly once per admitted call
func (c *Collector) RemoteCallFinished(ctx context.Context, elapsed time.Duration, status int, failed bool) {
	if failed {
		c.remoteErrorCount.Add(1)
		c.remoteErrors.Add(ctx, 1)
	}

	seconds := elapsed.Seconds()
	c.latency.Record(ctx, seconds)
	c.responses.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("http.status", status),
	))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCounts[status]++
	c.buckets[bucketIndex(seconds)]++
}

// Snapshot returns a consistent copy of all counters, with the latency
// buckets converted to cumulative form
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	statusCounts := make(map[int]uint64, len(c.statusCounts))
	for status, count := range c.statusCounts {
		statusCounts[status] = count
	}

	cumulative := make([]uint64, len(c.buckets))
	var running uint64
	for i, count := range c.buckets {
		running += count
		cumulative[i] = running
	}

	return Snapshot{
		RequestCount:     c.requestCount.Load(),
		RemoteCallCount:  c.remoteCallCount.Load(),
		RemoteErrorCount: c.remoteErrorCount.Load(),
		StatusCounts:     statusCounts,
		LatencyBuckets:   cumulative,
		Timestamp:        time.Now(),
	}
}

func bucketIndex(seconds float64) int {
	for i, bound := range DurationBuckets {
		if seconds <= bound {
			return i
		}
	}
	return len(DurationBuckets) // overflow
}
