package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"repstress/internal/analysis"
	"repstress/internal/domains"
	"repstress/internal/logger"
	"repstress/internal/report"
	"repstress/internal/runner"
	"repstress/internal/stats"
	"repstress/internal/storage"
)

// Options carries everything a headless run needs beyond the runner config.
type Options struct {
	Config      runner.Config
	DomainsFile string
	ResultsDir  string
	ResultsFile string
	LogLevel    string
	NoHistory   bool

	// Out receives the header, progress line and summary. Defaults to stdout.
	Out io.Writer
}

type runOutcome struct {
	res runner.Result
	err error
}

// Start validates the configuration, runs the stress test until the
// deadline or until ctx is cancelled, then reports and records the run.
func Start(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if err := os.MkdirAll(opts.ResultsDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:    opts.LogLevel,
		FilePath: filepath.Join(opts.ResultsDir, fmt.Sprintf("logger_%d.log", time.Now().Unix())),
	})
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("initialized stress run", logger.String("api_url", cfg.APIURL))

	list := domains.Load(cfg.DomainCount, opts.DomainsFile, log)
	if len(list) == 0 {
		return runner.ErrNoDomains
	}

	printHeader(out, cfg, opts)

	r := runner.NewRunner(cfg, runner.NewHTTPExecutor(cfg, log), log)
	done := make(chan runOutcome, 1)
	go func() {
		res, err := r.Run(ctx, list)
		done <- runOutcome{res: res, err: err}
	}()

	startTime := time.Now()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var result runner.Result
	for running := true; running; {
		select {
		case o := <-done:
			if o.err != nil {
				return o.err
			}
			result = o.res
			running = false
		case <-ticker.C:
			printProgress(out, r.Stats.Snapshot(), time.Since(startTime), cfg.Deadline())
		}
	}
	fmt.Fprintln(out)

	log.Info("analyzing test results")
	summary := analysis.Summarize(result.Results)
	report.PrintSummary(out, summary, result.Elapsed, result.Interrupted)

	path, err := report.WriteCSV(opts.ResultsDir, opts.ResultsFile, summary, result.Results, log)
	if err != nil {
		log.Error("saving results failed", logger.Error(err))
		return err
	}
	fmt.Fprintf(out, "\n💾 Results saved to %s\n", path)

	if opts.NoHistory {
		return nil
	}
	return saveHistory(opts, summary, result, path, log)
}

func saveHistory(opts Options, summary analysis.Summary, result runner.Result, path string, log logger.Logger) error {
	store, err := storage.Open(opts.ResultsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := &storage.Record{
		Config: storage.RunConfig{
			APIURL:      opts.Config.APIURL,
			Concurrency: opts.Config.Concurrency,
			DomainCount: opts.Config.DomainCount,
			TimeoutSec:  opts.Config.TimeoutSec,
		},
		Summary:     summary,
		Elapsed:     result.Elapsed,
		Interrupted: result.Interrupted,
		ResultsFile: path,
	}
	if err := store.Save(rec); err != nil {
		return fmt.Errorf("save run history: %w", err)
	}
	log.Info("run recorded", logger.String("id", rec.ID))
	return nil
}

func printHeader(w io.Writer, cfg runner.Config, opts Options) {
	fmt.Fprintf(w, "\n🚀 STARTING REPUTATION STRESS TEST\n")
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Target URL  : %s\n", cfg.APIURL)
	fmt.Fprintf(w, "Concurrency : %d\n", cfg.Concurrency)
	fmt.Fprintf(w, "Domains     : %d (%s)\n", cfg.DomainCount, opts.DomainsFile)
	fmt.Fprintf(w, "Timeout     : %ds (+%s grace)\n", cfg.TimeoutSec, cfg.Grace)
	fmt.Fprintf(w, "Results     : %s\n", opts.ResultsDir)
	fmt.Fprintf(w, "======================================================================\n\n")
}

func printProgress(w io.Writer, s stats.Snapshot, elapsed, total time.Duration) {
	pct := elapsed.Seconds() / total.Seconds()
	if elapsed >= total {
		fmt.Fprintf(w, "\r%s %3.0f%% | Draining: %d requests...                              ",
			progressBar(1.0, 20), 100.0, s.Inflight)
		return
	}

	rps := 0.0
	if elapsed.Seconds() > 0 {
		rps = float64(s.Requests) / elapsed.Seconds()
	}
	fmt.Fprintf(w, "\r%s %3.0f%% | %s/%s | Inf: %3d | RPS: %.1f | OK: %d | Err: %d | P90/P99: %s/%s",
		progressBar(pct, 20), pct*100,
		elapsed.Round(time.Second), total,
		s.Inflight, rps, s.Success, s.Fail,
		s.P90.Round(time.Millisecond), s.P99.Round(time.Millisecond),
	)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}
