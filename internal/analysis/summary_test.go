package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"repstress/internal/runner"
)

func sampleResults() []runner.RequestResult {
	return []runner.RequestResult{
		{Domain: "example1.com", Outcome: runner.OutcomeSuccess, Duration: 100 * time.Millisecond, StatusCode: 200, Reputation: "good"},
		{Domain: "example2.com", Outcome: runner.OutcomeSuccess, Duration: 200 * time.Millisecond, StatusCode: 200, Reputation: "bad"},
		{Domain: "example3.com", Outcome: runner.OutcomeTimeout, Duration: 300 * time.Millisecond, Err: "Timeout"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())

	assert.Equal(t, 3, s.TotalRequests)
	assert.Equal(t, 2, s.SuccessfulRequests)
	assert.Equal(t, 1, s.FailedRequests)
	assert.Equal(t, 1, s.TimedOutRequests)
	assert.InDelta(t, 1.0/3, s.ErrorRate, 1e-9)
	assert.InDelta(t, 0.1, s.MinDuration, 1e-9)
	assert.InDelta(t, 0.2, s.MaxDuration, 1e-9)
	assert.InDelta(t, 0.15, s.MeanDuration, 1e-9)
	assert.InDelta(t, 0.19, s.P90Duration, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize_NoSuccesses(t *testing.T) {
	s := Summarize([]runner.RequestResult{
		{Domain: "a", Outcome: runner.OutcomeFailure, StatusCode: 500, Duration: time.Second, Err: "500"},
		{Domain: "b", Outcome: runner.OutcomeFailure, Duration: time.Second, Err: "refused"},
	})

	assert.Equal(t, 2, s.FailedRequests)
	assert.Equal(t, 1, s.TimedOutRequests)
	assert.Equal(t, 1.0, s.ErrorRate)
	assert.Zero(t, s.MinDuration)
	assert.Zero(t, s.MaxDuration)
	assert.Zero(t, s.MeanDuration)
	assert.Zero(t, s.P90Duration)
}

func TestSummarize_CountsAddUp(t *testing.T) {
	results := sampleResults()
	results = append(results, runner.RequestResult{Domain: "x", Outcome: runner.OutcomeFailure, StatusCode: 404, Err: "404"})

	s := Summarize(results)
	assert.Equal(t, len(results), s.TotalRequests)
	assert.Equal(t, s.TotalRequests, s.SuccessfulRequests+s.FailedRequests)
}

func TestSummarize_Idempotent(t *testing.T) {
	results := sampleResults()
	assert.Equal(t, Summarize(results), Summarize(results))
}

func TestFields_Order(t *testing.T) {
	fields := Summarize(sampleResults()).Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{
		"total_request", "successful_requests", "failed_requests", "timed_out_requests",
		"error_rate", "min_request_dur", "max_request_dur", "avg_request_dur", "p90_request_dur",
	}, names)
}
