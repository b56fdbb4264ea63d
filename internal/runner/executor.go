package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"repstress/internal/logger"
)

const timeoutMessage = "Request timed out"

// Executor performs one lookup for one domain.
type Executor interface {
	Execute(ctx context.Context, domain string) RequestResult
}

// HTTPExecutor queries the reputation API over HTTP. It holds no mutable
// state and is safe for concurrent use.
type HTTPExecutor struct {
	client  *http.Client
	baseURL string
	token   string
	log     logger.Logger
}

func NewHTTPExecutor(cfg Config, log logger.Logger) *HTTPExecutor {
	t := http.DefaultTransport.(*http.Transport).Clone()
	conns := cfg.Concurrency
	if conns < 100 {
		conns = 100
	}
	t.MaxIdleConns = conns
	t.MaxConnsPerHost = conns
	t.MaxIdleConnsPerHost = conns

	return &HTTPExecutor{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: t,
		},
		baseURL: cfg.APIURL,
		token:   cfg.Token,
		log:     log,
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, domain string) RequestResult {
	url := e.baseURL + "/" + domain
	start := time.Now()

	res := e.do(ctx, url)
	res.Domain = domain
	res.Duration = time.Since(start)

	switch res.Outcome {
	case OutcomeSuccess:
		e.log.Debug("query domain done",
			logger.String("domain", domain),
			logger.Int("status", res.StatusCode),
			logger.Duration("duration", res.Duration))
	case OutcomeTimeout:
		e.log.Error("query domain timed out",
			logger.String("domain", domain),
			logger.Duration("duration", res.Duration))
	default:
		e.log.Error("query domain failed",
			logger.String("domain", domain),
			logger.Int("status", res.StatusCode),
			logger.String("error", res.Err))
	}
	return res
}

func (e *HTTPExecutor) do(ctx context.Context, url string) RequestResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RequestResult{Outcome: OutcomeFailure, Err: err.Error()}
	}
	req.Header.Set("Authorization", e.token)

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return RequestResult{Outcome: OutcomeTimeout, Err: timeoutMessage}
		}
		return RequestResult{Outcome: OutcomeFailure, Err: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return RequestResult{Outcome: OutcomeTimeout, Err: timeoutMessage}
		}
		return RequestResult{Outcome: OutcomeFailure, StatusCode: resp.StatusCode, Err: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RequestResult{
			Outcome:    OutcomeFailure,
			StatusCode: resp.StatusCode,
			Err:        statusError(resp.StatusCode, url),
		}
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return RequestResult{
			Outcome:    OutcomeFailure,
			StatusCode: resp.StatusCode,
			Err:        fmt.Sprintf("invalid response body: %v", err),
		}
	}
	reputation, ok := data["reputation"]
	if !ok {
		return RequestResult{
			Outcome:    OutcomeFailure,
			StatusCode: resp.StatusCode,
			Err:        "response body has no reputation field",
		}
	}

	return RequestResult{
		Outcome:    OutcomeSuccess,
		StatusCode: resp.StatusCode,
		Reputation: reputation,
		Data:       data,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusError(code int, url string) string {
	kind := "Server Error"
	if code < 500 {
		kind = "Client Error"
	}
	return fmt.Sprintf("%d %s: %s for url: %s", code, kind, http.StatusText(code), url)
}
