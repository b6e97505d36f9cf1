package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the embedded time-series store under workdir/data/metrics
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a single point for the named metric
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	err := storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
	if err != nil {
		zap.S().Debugf("metrics insert %s error: %s", name, err.Error())
	}
}

// IncrCounter records a count-of-one point for the named metric
func IncrCounter(name string) {
	SetGauge(name, 1)
}

// QueryRange returns data points for the metric between start and end (unix seconds)
func QueryRange(name string, start, end int64) []*tstorage.DataPoint {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil
	}
	points, err := storage.Select(name, nil, start, end)
	if err != nil {
		return nil
	}
	return points
}

// Close flushes and closes the store
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		_ = storage.Close()
		storage = nil
	}
}
