package models

import (
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Store wraps the SQLite ledger. All mutation paths go through withWrite so
// only one ledger write is in flight per process, with bounded exponential
// backoff when SQLite reports contention from readers holding shared locks.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

var ledgerWriteMu sync.Mutex

const (
	ledgerWriteMaxRetries   = 10
	ledgerWriteInitialDelay = 100 * time.Millisecond
	ledgerWriteMaxDelay     = 5 * time.Second
)

func (s *Store) withWrite(fn func(db *gorm.DB) error) error {
	ledgerWriteMu.Lock()
	defer ledgerWriteMu.Unlock()

	delay := ledgerWriteInitialDelay
	var err error
	for attempt := 0; attempt < ledgerWriteMaxRetries; attempt++ {
		err = fn(s.db)
		if err == nil || !isBusyError(err) {
			return err
		}
		time.Sleep(delay)
		delay *= 2
		if delay > ledgerWriteMaxDelay {
			delay = ledgerWriteMaxDelay
		}
	}
	return err
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database is busy") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
