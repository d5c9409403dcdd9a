// Package tradelog persists the append-only trade journal.
package tradelog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

const (
	defaultJournalDir   = "./wal/trades"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	tradeKeyPrefix      = "trade_"
)

// WALStore journals executed trades so history survives restarts.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed trade journal under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one trade record to the journal.
func (s *WALStore) Append(record domain.TradeRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal trade record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	key := fmt.Sprintf("%s%s", tradeKeyPrefix, record.ID)
	return s.wal.Write(nextIndex, key, payload)
}

// Replay returns all journaled trades in append order.
func (s *WALStore) Replay() ([]domain.TradeRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.TradeRecord
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, tradeKeyPrefix) {
			continue
		}
		var record domain.TradeRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			return nil, errors.Wrapf(err, "decode trade record %s", msg.Key)
		}
		records = append(records, record)
	}
	return records, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
