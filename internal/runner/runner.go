package runner

import (
	"context"
	"fmt"
	"time"

	"repstress/internal/logger"
	"repstress/internal/stats"
)

// drainPoll bounds each wait for a completion so the deadline is re-checked
// even when every outstanding request is stalled.
const drainPoll = time.Second

// Runner keeps a fixed number of lookups in flight against a rotating
// domain list until the deadline passes or the context is cancelled.
type Runner struct {
	Cfg   Config
	Stats *stats.Stats

	exec Executor
	log  logger.Logger
	poll time.Duration
}

func NewRunner(cfg Config, exec Executor, log logger.Logger) *Runner {
	return &Runner{
		Cfg:   cfg,
		Stats: stats.NewStats(),
		exec:  exec,
		log:   log,
		poll:  drainPoll,
	}
}

// Run drives the scheduling loop. Cancelling ctx stops submission the same
// way the deadline does and marks the result as interrupted. Results are
// returned in completion order.
func (r *Runner) Run(ctx context.Context, domains []string) (Result, error) {
	if len(domains) == 0 {
		return Result{}, ErrNoDomains
	}
	k := r.Cfg.Concurrency
	if k < 1 {
		return Result{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}

	r.log.Info("starting stress test",
		logger.Int("concurrency", k),
		logger.Int("domains", len(domains)),
		logger.Duration("timeout", r.Cfg.Deadline()))

	start := time.Now()
	deadline := start.Add(r.Cfg.Deadline())

	// In-flight requests survive an interrupt until the grace period ends.
	reqCtx, cancelReqs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelReqs()

	// Sized so no worker ever blocks on send, even after the loop exits.
	done := make(chan RequestResult, k)

	var (
		results     []RequestResult
		next        int
		outstanding int
		stopped     bool
		interrupted bool
		graceEnd    time.Time
		interrupt   = ctx.Done()
	)

	submit := func() {
		domain := domains[next]
		next = (next + 1) % len(domains)
		outstanding++
		r.Stats.Inflight.Add(1)
		go func() {
			done <- r.exec.Execute(reqCtx, domain)
		}()
	}

	collect := func(res RequestResult) {
		outstanding--
		r.Stats.Inflight.Add(-1)
		r.Stats.Add(res.Success(), !res.HasStatus(), res.Duration)
		results = append(results, res)
	}

	stop := func(reason string) {
		stopped = true
		interrupt = nil
		graceEnd = time.Now().Add(r.Cfg.Grace)
		r.log.Info("submission stopped",
			logger.String("reason", reason),
			logger.Int("outstanding", outstanding))
	}

	for {
		if !stopped && ctx.Err() != nil {
			interrupted = true
			stop("interrupted")
			r.log.Error("test stopped due to interrupt")
		}
		if !stopped {
			for outstanding < k && time.Now().Before(deadline) {
				submit()
			}
			if !time.Now().Before(deadline) {
				stop("deadline")
			}
		}
		if stopped && outstanding == 0 {
			break
		}

		limit := deadline
		if stopped {
			limit = graceEnd
		}
		wait := min(r.poll, max(time.Until(limit), 0))
		timer := time.NewTimer(wait)

		select {
		case res := <-done:
			collect(res)
		drain:
			for {
				select {
				case res := <-done:
					collect(res)
				default:
					break drain
				}
			}
		case <-interrupt:
			interrupted = true
			stop("interrupted")
			r.log.Error("test stopped due to interrupt")
		case <-timer.C:
		}
		timer.Stop()

		if stopped && outstanding > 0 && !time.Now().Before(graceEnd) {
			r.log.Warn("cancelling outstanding requests after grace period",
				logger.Int("outstanding", outstanding),
				logger.Duration("grace", r.Cfg.Grace))
			cancelReqs()
			r.Stats.Inflight.Add(-int64(outstanding))
			break
		}
	}

	elapsed := time.Since(start)
	r.log.Info("stress test completed",
		logger.Duration("elapsed", elapsed),
		logger.Int("requests", len(results)),
		logger.Bool("interrupted", interrupted))

	return Result{
		Results:     results,
		Elapsed:     elapsed,
		Interrupted: interrupted,
	}, nil
}
