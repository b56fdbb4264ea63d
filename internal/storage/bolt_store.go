// Package storage keeps a history of completed runs in a bbolt file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"repstress/internal/analysis"
)

const (
	BucketRuns = "runs"
	FileName   = "history.db"
)

var ErrNotFound = errors.New("run not found")

// RunConfig is the subset of run settings worth keeping with a record.
type RunConfig struct {
	APIURL      string `json:"api_url"`
	Concurrency int    `json:"concurrency"`
	DomainCount int    `json:"domain_count"`
	TimeoutSec  int    `json:"timeout_sec"`
}

type Record struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Config      RunConfig        `json:"config"`
	Summary     analysis.Summary `json:"summary"`
	Elapsed     time.Duration    `json:"elapsed"`
	Interrupted bool             `json:"interrupted"`
	ResultsFile string           `json:"results_file,omitempty"`
}

type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the history database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, FileName), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores rec, assigning an ID and timestamp when missing. Keys are
// time-ordered UUIDs so a cursor walks runs chronologically.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate run id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).Put([]byte(rec.ID), data)
	})
}

// List returns runs newest first, at most limit of them (all when limit <= 0).
func (s *Store) List(limit int) ([]Record, error) {
	var items []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var item Record
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			items = append(items, item)
			if limit > 0 && len(items) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Get(id string) (*Record, error) {
	var item Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(BucketRuns)).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(v, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
