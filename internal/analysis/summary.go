// Package analysis reduces a finished run's results into summary statistics.
package analysis

import (
	"repstress/internal/runner"
	"repstress/internal/stats"
)

// Summary aggregates a completed run. Durations are in seconds and cover
// successful requests only.
type Summary struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	TimedOutRequests   int     `json:"timed_out_requests"`
	ErrorRate          float64 `json:"error_rate"`
	MinDuration        float64 `json:"min_request_dur"`
	MaxDuration        float64 `json:"max_request_dur"`
	MeanDuration       float64 `json:"avg_request_dur"`
	P90Duration        float64 `json:"p90_request_dur"`
}

// Summarize is pure; the same input always yields the same Summary.
// TimedOutRequests counts every result without a status code, whatever
// its outcome.
func Summarize(results []runner.RequestResult) Summary {
	s := Summary{TotalRequests: len(results)}

	var durations []float64
	for _, r := range results {
		if r.Success() {
			s.SuccessfulRequests++
			durations = append(durations, r.Duration.Seconds())
		}
		if !r.HasStatus() {
			s.TimedOutRequests++
		}
	}
	s.FailedRequests = s.TotalRequests - s.SuccessfulRequests
	if s.TotalRequests > 0 {
		s.ErrorRate = float64(s.FailedRequests) / float64(s.TotalRequests)
	}

	s.MinDuration = stats.Min(durations)
	s.MaxDuration = stats.Max(durations)
	s.MeanDuration = stats.Mean(durations)
	s.P90Duration = stats.Percentile(durations, 90)
	return s
}

// Field is one named summary value, in report order.
type Field struct {
	Name  string
	Value any
}

// Fields lists every summary value under its report name.
func (s Summary) Fields() []Field {
	return []Field{
		{"total_request", s.TotalRequests},
		{"successful_requests", s.SuccessfulRequests},
		{"failed_requests", s.FailedRequests},
		{"timed_out_requests", s.TimedOutRequests},
		{"error_rate", s.ErrorRate},
		{"min_request_dur", s.MinDuration},
		{"max_request_dur", s.MaxDuration},
		{"avg_request_dur", s.MeanDuration},
		{"p90_request_dur", s.P90Duration},
	}
}
