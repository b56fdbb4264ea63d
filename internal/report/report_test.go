package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repstress/internal/analysis"
	"repstress/internal/logger"
	"repstress/internal/runner"
)

func sampleResults() []runner.RequestResult {
	return []runner.RequestResult{
		{Domain: "example1.com", Outcome: runner.OutcomeSuccess, Duration: 100 * time.Millisecond, StatusCode: 200, Reputation: "good"},
		{Domain: "example2.com", Outcome: runner.OutcomeSuccess, Duration: 200 * time.Millisecond, StatusCode: 200, Reputation: 42.0,
			Data: map[string]any{"domain": "example2.com", "reputation": 42.0}},
		{Domain: "example3.com", Outcome: runner.OutcomeTimeout, Duration: 300 * time.Millisecond, Err: "Request timed out"},
	}
}

func TestPrintSummary(t *testing.T) {
	results := sampleResults()
	var buf bytes.Buffer

	PrintSummary(&buf, analysis.Summarize(results), time.Second, false)
	out := buf.String()

	assert.Contains(t, out, "Test is over!")
	assert.Contains(t, out, "Reason: timeout")
	assert.Contains(t, out, "Time in total: 1.00 seconds")
	assert.Contains(t, out, "Requests in total: 3")
	assert.Contains(t, out, "Timed out requests in total: 1")
	assert.Contains(t, out, "Error rate: 33.33% (1/ 3)")
	assert.Contains(t, out, "Average time for one request: 150.00 ms")
	assert.Contains(t, out, "The 90th percentile time for one request: 0.19 seconds")
}

func TestPrintSummary_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, analysis.Summarize(nil), 300*time.Millisecond, true)
	assert.Contains(t, buf.String(), "Reason: keyboard interrupt")
	assert.Contains(t, buf.String(), "Error rate: 0.00% (0/ 0)")
}

func TestEncode(t *testing.T) {
	results := sampleResults()
	var buf bytes.Buffer

	require.NoError(t, Encode(&buf, analysis.Summarize(results), results))
	content := buf.String()

	assert.True(t, strings.HasPrefix(content, "Field,Value\n"))
	assert.Contains(t, content, "total_request,3\n")
	assert.Contains(t, content, "timed_out_requests,1\n")
	assert.Contains(t, content, "min_request_dur,0.1\n")
	assert.Contains(t, content, "Domain,Success,Time,Status code,Reputation,Info\n")
	assert.Contains(t, content, "example1.com,true,0.1,200,good,\n")
	assert.Contains(t, content, `example2.com,true,0.2,200,42,"{""domain"":""example2.com"",""reputation"":42}"`)
	assert.Contains(t, content, "example3.com,false,0.3,,0,Request timed out\n")
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	results := sampleResults()

	path, err := WriteCSV(dir, "test_output", analysis.Summarize(results), results, logger.NewNop())
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "test_output_*.csv"))
	require.NoError(t, err)
	require.Equal(t, []string{path}, matches)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Field,Value")
	assert.Contains(t, string(data), "Domain,Success,Time,Status code,Reputation,Info")
}

func TestWriteCSV_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := analysis.Summarize(sampleResults())
	_, err := WriteCSV(filepath.Join(blocker, "results"), "out", s, sampleResults(), logger.NewNop())
	assert.Error(t, err)
	assert.Equal(t, 3, s.TotalRequests)
}
