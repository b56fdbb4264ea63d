package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds live counters for a run in progress. Writers and readers may
// be on different goroutines.
type Stats struct {
	Requests atomic.Uint64
	Success  atomic.Uint64
	Fail     atomic.Uint64
	Timeouts atomic.Uint64
	Inflight atomic.Int64

	// Latency of successful requests only.
	Latency *SafeHistogram
}

// Snapshot is a point-in-time copy for progress rendering.
type Snapshot struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Timeouts uint64
	Inflight int64

	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
	Max time.Duration
}

func NewStats() *Stats {
	return &Stats{Latency: NewSafeHistogram()}
}

// Add records one completed request.
func (s *Stats) Add(success, timedOut bool, latency time.Duration) {
	s.Requests.Add(1)
	if success {
		s.Success.Add(1)
		s.Latency.Record(latency)
	} else {
		s.Fail.Add(1)
	}
	if timedOut {
		s.Timeouts.Add(1)
	}
}

func (s *Stats) ErrorRate() float64 {
	reqs := s.Requests.Load()
	if reqs == 0 {
		return 0
	}
	return float64(s.Fail.Load()) / float64(reqs)
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Requests: s.Requests.Load(),
		Success:  s.Success.Load(),
		Fail:     s.Fail.Load(),
		Timeouts: s.Timeouts.Load(),
		Inflight: s.Inflight.Load(),
		P50:      s.Latency.Quantile(50),
		P90:      s.Latency.Quantile(90),
		P99:      s.Latency.Quantile(99),
		Max:      s.Latency.Max(),
	}
}
