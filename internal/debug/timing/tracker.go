package timing

import (
	"sync"
	"time"
)

// DefaultWindow is how many recent samples each operation keeps.
const DefaultWindow = 120

// Tracker keeps a sliding window of durations per operation.
type Tracker struct {
	mu      sync.RWMutex
	window  int
	samples map[string][]time.Duration
	next    map[string]int
}

func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window:  window,
		samples: make(map[string][]time.Duration),
		next:    make(map[string]int),
	}
}

// Start returns a function that records the elapsed time for operation.
func (tt *Tracker) Start(operation string) func() {
	start := time.Now()
	return func() {
		tt.Record(operation, time.Since(start))
	}
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	buf := tt.samples[operation]
	if len(buf) < tt.window {
		tt.samples[operation] = append(buf, d)
		return
	}
	i := tt.next[operation]
	buf[i] = d
	tt.next[operation] = (i + 1) % tt.window
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.samples[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Averages returns the mean of every tracked operation in milliseconds,
// shaped for log fields.
func (tt *Tracker) Averages() map[string]interface{} {
	tt.mu.RLock()
	names := make([]string, 0, len(tt.samples))
	for name := range tt.samples {
		names = append(names, name)
	}
	tt.mu.RUnlock()

	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		out[name+"_avg_ms"] = float64(tt.GetAverageTime(name).Microseconds()) / 1000
	}
	return out
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.samples = make(map[string][]time.Duration)
		tt.next = make(map[string]int)
		return
	}
	delete(tt.samples, operation)
	delete(tt.next, operation)
}
