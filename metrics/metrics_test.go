package metrics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhook-relay/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	ctx := context.Background()
	collector, err := metrics.NewCollector()
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		collector.RequestAdmitted(ctx)
		collector.RemoteCallStarted(ctx)
	}
	collector.RemoteCallFinished(ctx, 30*time.Millisecond, 200, false)
	collector.RemoteCallFinished(ctx, 80*time.Millisecond, 201, false)
	collector.RemoteCallFinished(ctx, 200*time.Millisecond, 200, false)
	collector.RemoteCallFinished(ctx, 2*time.Second, 500, true)

	snap := collector.Snapshot()

	assert.Equal(t, uint64(4), snap.RequestCount)
	assert.Equal(t, uint64(4), snap.RemoteCallCount)
	assert.Equal(t, uint64(1), snap.RemoteErrorCount)
	assert.Equal(t, uint64(2), snap.StatusCounts[200])
	assert.Equal(t, uint64(1), snap.StatusCounts[201])
	assert.Equal(t, uint64(1), snap.StatusCounts[500])
}

func TestCollector_HistogramIsCumulative(t *testing.T) {
	ctx := context.Background()
	collector, err := metrics.NewCollector()
	require.NoError(t, err)

	// One observation per region of the bucket layout
	collector.RemoteCallFinished(ctx, 10*time.Millisecond, 200, false) // <= 0.05
	collector.RemoteCallFinished(ctx, 300*time.Millisecond, 200, false) // <= 0.5
	collector.RemoteCallFinished(ctx, time.Minute, 200, false)          // overflow

	snap := collector.Snapshot()
	require.Len(t, snap.LatencyBuckets, len(metrics.DurationBuckets)+1)

	assert.Equal(t, uint64(1), snap.LatencyBuckets[0])
	for i := 1; i <= 2; i++ {
		assert.Equal(t, uint64(1), snap.LatencyBuckets[i], "bucket %d", i)
	}
	for i := 3; i < len(metrics.DurationBuckets); i++ {
		assert.Equal(t, uint64(2), snap.LatencyBuckets[i], "bucket %d", i)
	}
	assert.Equal(t, uint64(3), snap.LatencyBuckets[len(snap.LatencyBuckets)-1])

	// Cumulative counts never decrease
	for i := 1; i < len(snap.LatencyBuckets); i++ {
		assert.GreaterOrEqual(t, snap.LatencyBuckets[i], snap.LatencyBuckets[i-1])
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	collector, err := metrics.NewCollector()
	require.NoError(t, err)

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				collector.RequestAdmitted(ctx)
				collector.RemoteCallStarted(ctx)
				collector.RemoteCallFinished(ctx, 10*time.Millisecond, 200, false)
			}
		}()
	}
	wg.Wait()

	snap := collector.Snapshot()
	assert.Equal(t, uint64(workers*perWorker), snap.RequestCount)
	assert.Equal(t, uint64(workers*perWorker), snap.RemoteCallCount)
	assert.Equal(t, uint64(workers*perWorker), snap.StatusCounts[200])
	assert.Equal(t, uint64(workers*perWorker), snap.LatencyBuckets[len(snap.LatencyBuckets)-1])
}
