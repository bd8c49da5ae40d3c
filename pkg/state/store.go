package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/models"
)

// Bucket names. One bucket per concern.
const (
	sectionStatusBucket = "section_status"
	finalStatusBucket   = "final_status"
	confirmedBucket     = "confirmed_findings"
)

// Store persists the state that survives between runs and that the
// calculation core treats as externally supplied: status overrides and
// confirmed finding keys. Backed by a single-file BoltDB.
type Store struct {
	db *bbolt.DB
}

type confirmation struct {
	ConfirmedAt string `json:"confirmed_at"`
}

// Open opens (or creates) the state database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state database at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{sectionStatusBucket, finalStatusBucket, confirmedBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	logger.Debug("State store opened at %s", dbPath)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sectionStatusKey(bib int, section string) []byte {
	return []byte(strconv.Itoa(bib) + "/" + section)
}

// SetSectionStatus stores a status override for one (bib, section) cell.
func (s *Store) SetSectionStatus(bib int, section, status string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sectionStatusBucket)).Put(sectionStatusKey(bib, section), []byte(status))
	})
}

// ClearSectionStatus removes a section override.
func (s *Store) ClearSectionStatus(bib int, section string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sectionStatusBucket)).Delete(sectionStatusKey(bib, section))
	})
}

// SectionStatuses returns every section override keyed by (bib, section).
func (s *Store) SectionStatuses() (map[models.ResultKey]string, error) {
	statuses := make(map[models.ResultKey]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sectionStatusBucket)).ForEach(func(k, v []byte) error {
			parts := strings.SplitN(string(k), "/", 2)
			if len(parts) != 2 {
				logger.Warn("Malformed section status key %q, skipping", string(k))
				return nil
			}
			bib, err := strconv.Atoi(parts[0])
			if err != nil {
				logger.Warn("Malformed section status key %q, skipping", string(k))
				return nil
			}
			statuses[models.ResultKey{Bib: bib, Section: parts[1]}] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read section statuses: %w", err)
	}
	return statuses, nil
}

// SetFinalStatus stores an overall status override for one bib.
func (s *Store) SetFinalStatus(bib int, status string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(finalStatusBucket)).Put([]byte(strconv.Itoa(bib)), []byte(status))
	})
}

// ClearFinalStatus removes an overall override.
func (s *Store) ClearFinalStatus(bib int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(finalStatusBucket)).Delete([]byte(strconv.Itoa(bib)))
	})
}

// FinalStatuses returns every overall override keyed by bib.
func (s *Store) FinalStatuses() (map[int]string, error) {
	statuses := make(map[int]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(finalStatusBucket)).ForEach(func(k, v []byte) error {
			bib, err := strconv.Atoi(string(k))
			if err != nil {
				logger.Warn("Malformed final status key %q, skipping", string(k))
				return nil
			}
			statuses[bib] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read final statuses: %w", err)
	}
	return statuses, nil
}

// ConfirmFinding records that the operator acknowledged a finding key.
func (s *Store) ConfirmFinding(findingKey string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(confirmation{
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(confirmedBucket)).Put([]byte(findingKey), data)
	})
}

// UnconfirmFinding removes an acknowledgement.
func (s *Store) UnconfirmFinding(findingKey string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(confirmedBucket)).Delete([]byte(findingKey))
	})
}

// ConfirmedKeys returns every acknowledged finding key.
func (s *Store) ConfirmedKeys() (map[string]bool, error) {
	keys := make(map[string]bool)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(confirmedBucket)).ForEach(func(k, v []byte) error {
			keys[string(k)] = true
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read confirmed findings: %w", err)
	}
	return keys, nil
}
