// Package report renders a finished run to the console and to CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"repstress/internal/analysis"
	"repstress/internal/logger"
	"repstress/internal/runner"
	"repstress/internal/tui/styles"
)

// Reason names why submission stopped.
func Reason(interrupted bool) string {
	if interrupted {
		return "keyboard interrupt"
	}
	return "timeout"
}

// PrintSummary writes the human-readable run summary.
func PrintSummary(w io.Writer, s analysis.Summary, elapsed time.Duration, interrupted bool) {
	fmt.Fprintf(w, "\n%s\n", styles.Title.Render("📊 STRESS TEST RESULTS"))
	fmt.Fprintf(w, "Test is over!\n")
	fmt.Fprintf(w, "Reason: %s\n", Reason(interrupted))
	fmt.Fprintf(w, "Time in total: %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(w, "Requests in total: %d\n", s.TotalRequests)
	fmt.Fprintf(w, "Successful requests in total: %d\n", s.SuccessfulRequests)
	fmt.Fprintf(w, "Failed requests in total: %d\n", s.FailedRequests)
	fmt.Fprintf(w, "Timed out requests in total: %d\n", s.TimedOutRequests)
	fmt.Fprintf(w, "Error rate: %.2f%% (%d/ %d)\n", s.ErrorRate*100, s.FailedRequests, s.TotalRequests)
	fmt.Fprintf(w, "Average time for one request: %.2f ms\n", s.MeanDuration*1000)
	fmt.Fprintf(w, "Max time for one request: %.2f seconds\n", s.MaxDuration)
	fmt.Fprintf(w, "Min time for one request: %.2f seconds\n", s.MinDuration)
	fmt.Fprintf(w, "The 90th percentile time for one request: %.2f seconds\n", s.P90Duration)
}

// WriteCSV saves the summary and every result to
// <dir>/<prefix>_<unix seconds>.csv and returns the path written.
func WriteCSV(dir, prefix string, s analysis.Summary, results []runner.RequestResult, log logger.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", prefix, time.Now().Unix()))
	log.Debug("saving test results to csv", logger.String("path", path))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, s, results); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close results file: %w", err)
	}

	log.Info("saved test results to csv", logger.String("path", path), logger.Int("rows", len(results)))
	return path, nil
}

// Encode writes the two-section CSV: a Field,Value block followed by one
// row per result.
func Encode(out io.Writer, s analysis.Summary, results []runner.RequestResult) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"Field", "Value"}); err != nil {
		return err
	}
	for _, field := range s.Fields() {
		if err := w.Write([]string{field.Name, formatValue(field.Value)}); err != nil {
			return err
		}
	}

	header := []string{"Domain", "Success", "Time", "Status code", "Reputation", "Info"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Domain,
			strconv.FormatBool(r.Success()),
			strconv.FormatFloat(r.Duration.Seconds(), 'f', -1, 64),
			statusCode(r),
			reputation(r),
			info(r),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func statusCode(r runner.RequestResult) string {
	if !r.HasStatus() {
		return ""
	}
	return strconv.Itoa(r.StatusCode)
}

func reputation(r runner.RequestResult) string {
	if r.Reputation == nil {
		return "0"
	}
	return fmt.Sprint(r.Reputation)
}

func info(r runner.RequestResult) string {
	if len(r.Data) == 0 {
		return r.Err
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Sprint(r.Data)
	}
	return string(b)
}
