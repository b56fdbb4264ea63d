package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repstress/internal/dummy"
	"repstress/internal/runner"
	"repstress/internal/stats"
	"repstress/internal/storage"
)

func testOptions(t *testing.T, apiURL string) Options {
	t.Helper()
	dir := t.TempDir()
	domainsFile := filepath.Join(dir, "domains.yaml")
	require.NoError(t, os.WriteFile(domainsFile, []byte("domains:\n  - a.com\n  - b.org\n"), 0o644))

	return Options{
		Config: runner.Config{
			APIURL:      apiURL,
			Token:       "secret",
			Concurrency: 4,
			DomainCount: 10,
			TimeoutSec:  1,
			Grace:       time.Second,
		},
		DomainsFile: domainsFile,
		ResultsDir:  filepath.Join(dir, "results"),
		ResultsFile: "stress_test_results",
		LogLevel:    "debug",
	}
}

func TestStart_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler("secret"))
	defer srv.Close()

	opts := testOptions(t, srv.URL+dummy.RankingPath)
	var out bytes.Buffer
	opts.Out = &out

	require.NoError(t, Start(context.Background(), opts))

	assert.Contains(t, out.String(), "Test is over!")
	assert.Contains(t, out.String(), "Reason: timeout")

	csvs, err := filepath.Glob(filepath.Join(opts.ResultsDir, "stress_test_results_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvs, 1)
	data, err := os.ReadFile(csvs[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.com,true,")

	logs, err := filepath.Glob(filepath.Join(opts.ResultsDir, "logger_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	store, err := storage.Open(opts.ResultsDir)
	require.NoError(t, err)
	defer store.Close()
	items, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, csvs[0], items[0].ResultsFile)
	assert.Positive(t, items[0].Summary.SuccessfulRequests)
	assert.Zero(t, items[0].Summary.FailedRequests)
}

func TestStart_Interrupted(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler("secret"))
	defer srv.Close()

	opts := testOptions(t, srv.URL+dummy.RankingPath)
	opts.Config.TimeoutSec = 30
	opts.NoHistory = true
	var out bytes.Buffer
	opts.Out = &out

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	require.NoError(t, Start(ctx, opts))
	assert.Contains(t, out.String(), "Reason: keyboard interrupt")
	_, err := os.Stat(filepath.Join(opts.ResultsDir, storage.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestStart_InvalidConfig(t *testing.T) {
	opts := testOptions(t, "http://unused")
	opts.Config.Token = ""

	err := Start(context.Background(), opts)
	assert.ErrorIs(t, err, runner.ErrInvalidConfig)
	_, statErr := os.Stat(opts.ResultsDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----]", progressBar(0, 4))
	assert.Equal(t, "[██--]", progressBar(0.5, 4))
	assert.Equal(t, "[████]", progressBar(2, 4))
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	printProgress(&buf, stats.Snapshot{Requests: 10, Success: 9, Fail: 1, Inflight: 3}, time.Second, 2*time.Second)
	assert.True(t, strings.HasPrefix(buf.String(), "\r[██████████----------]  50%"))
	assert.Contains(t, buf.String(), "OK: 9 | Err: 1")

	buf.Reset()
	printProgress(&buf, stats.Snapshot{Inflight: 2}, 3*time.Second, 2*time.Second)
	assert.Contains(t, buf.String(), "Draining: 2 requests")
}
