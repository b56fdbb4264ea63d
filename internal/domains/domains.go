// Package domains supplies the list of domains a run cycles through.
package domains

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"repstress/internal/logger"
	"repstress/internal/runner"
)

// Default is used whenever the domains file cannot be read or parsed.
var Default = []string{
	"google.com", "youtube.com", "facebook.com", "amazon.com", "wikipedia.org",
	"twitter.com", "instagram.com", "linkedin.com", "reddit.com", "netflix.com",
	"securingsam.com", "domaintest1.org", "domaintest2.co.il", "domaintest3.net",
	"domaintest4.gov", ".",
}

type file struct {
	Domains []string `yaml:"domains"`
}

// Load returns count domains drawn with replacement from the YAML file at
// path, capped at runner.MaxDomains. Any problem with the file falls back
// to Default.
func Load(count int, path string, log logger.Logger) []string {
	pool, err := readFile(path)
	if err != nil {
		log.Error("domain list unavailable, using default list instead",
			logger.String("path", path), logger.Error(err))
		pool = Default
	} else {
		log.Info("domain list loaded", logger.String("path", path), logger.Int("size", len(pool)))
	}

	n := min(count, runner.MaxDomains)
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := range out {
		out[i] = pool[rand.IntN(len(pool))]
	}
	return out
}

func readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domains file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse domains file: %w", err)
	}
	if len(f.Domains) == 0 {
		return nil, fmt.Errorf("domains file %s has no domains", path)
	}
	return f.Domains, nil
}
