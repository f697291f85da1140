package store

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"chantierbook/models"
)

// Backend persists the serialized document as one opaque blob. Saves are
// all-or-nothing; there are no partial writes and no migrations.
type Backend interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

// Store keeps the entire document in memory and flushes it through the
// backend after every successful mutation.
type Store struct {
	mu      sync.RWMutex
	doc     *models.Document
	backend Backend
	log     *logrus.Logger
}

// Open loads the document from the backend. A missing or corrupted blob is
// not an error: the store starts from a fresh empty document instead, and
// the corruption is logged.
func Open(backend Backend, log *logrus.Logger) (*Store, error) {
	s := &Store{backend: backend, log: log}
	data, err := backend.Load()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		s.doc = models.NewDocument()
		return s, nil
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.WithError(err).Warn("corrupted document, starting from an empty store")
		s.doc = models.NewDocument()
		return s, nil
	}
	if doc.Accounts == nil {
		doc.Accounts = []*models.Account{}
	}
	s.doc = &doc
	return s, nil
}

func (s *Store) Close() error { return s.backend.Close() }

// Mutate runs fn on the document and flushes the whole document when fn
// succeeds. When fn fails nothing is persisted and the error is returned
// as is, so a rejected operation leaves no trace on disk.
func (s *Store) Mutate(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	return s.flushLocked()
}

// View runs fn on the live document under a read lock. fn must not retain
// references past its return.
func (s *Store) View(fn func(doc *models.Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc)
}

// Snapshot returns an independent deep copy of the whole document, used by
// the export endpoint.
func (s *Store) Snapshot() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Replace swaps in a whole new document and persists it. Used by import;
// callers are responsible for ending the current session afterwards.
func (s *Store) Replace(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Accounts == nil {
		doc.Accounts = []*models.Account{}
	}
	s.doc = doc
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	return s.backend.Save(data)
}
