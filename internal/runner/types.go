package runner

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxDomains caps how many domains a run draws from the domain source.
	MaxDomains = 5000

	DefaultConcurrency = 10
	DefaultDomainCount = 500
	DefaultTimeoutSec  = 60
	DefaultGrace       = 5 * time.Second
	DefaultAPIURL      = "https://microcks.gin.dev.securingsam.io/rest/Reputation+API/1.0.0/domain/ranking"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoDomains     = errors.New("domain list is empty")
)

type Config struct {
	APIURL      string
	Token       string
	Concurrency int
	DomainCount int
	TimeoutSec  int

	// Grace bounds how long outstanding requests may keep running after
	// submission stops before they are cancelled.
	Grace time.Duration
	// RequestTimeout is the per-request transport timeout. Zero means none.
	RequestTimeout time.Duration
}

// Deadline is the wall-clock budget for submitting requests.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	switch {
	case c.Token == "":
		return fmt.Errorf("%w: API token is not set (export API_TOKEN)", ErrInvalidConfig)
	case c.DomainCount > MaxDomains:
		return fmt.Errorf("%w: number of domains cannot exceed %d", ErrInvalidConfig, MaxDomains)
	case c.DomainCount < 1:
		return fmt.Errorf("%w: number of domains cannot be less than 1", ErrInvalidConfig)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: number of concurrent requests cannot be less than 1", ErrInvalidConfig)
	case c.TimeoutSec < 1:
		return fmt.Errorf("%w: timeout cannot be less than 1", ErrInvalidConfig)
	case c.APIURL == "":
		return fmt.Errorf("%w: API URL is empty", ErrInvalidConfig)
	case c.Grace < 0 || c.RequestTimeout < 0:
		return fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Outcome tags how a single request ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "failure"
	}
}

// RequestResult is the immutable record of one lookup attempt.
// StatusCode is zero when no HTTP exchange completed.
type RequestResult struct {
	Domain     string
	Outcome    Outcome
	Duration   time.Duration
	StatusCode int
	Reputation any
	Data       map[string]any
	Err        string
}

func (r RequestResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

func (r RequestResult) HasStatus() bool {
	return r.StatusCode != 0
}

// Result is what a finished scheduling loop hands over.
type Result struct {
	Results     []RequestResult
	Elapsed     time.Duration
	Interrupted bool
}
