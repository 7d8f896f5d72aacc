// Package memory provides an in-memory record store, used by tests and by
// the CLI when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/store"
)

// Store is an in-memory store.RecordStore. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	records  map[string]store.Record
	audit    map[string]map[string]json.RawMessage
	research map[string]map[string]store.ResearchRow
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records:  make(map[string]store.Record),
		audit:    make(map[string]map[string]json.RawMessage),
		research: make(map[string]map[string]store.ResearchRow),
	}
}

// Put inserts or replaces a record.
func (s *Store) Put(record store.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID()] = maps.Clone(record)
}

// PutResearchRows seeds the AI-populated research audit for a record.
func (s *Store) PutResearchRows(recordID string, rows map[string]store.ResearchRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.research[recordID] = maps.Clone(rows)
}

// GetRecord implements store.RecordStore.
func (s *Store) GetRecord(_ context.Context, recordID string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, errors.NewNotFoundError("record", recordID)
	}
	return maps.Clone(record), nil
}

// GetField implements store.RecordStore.
func (s *Store) GetField(_ context.Context, recordID, fieldName string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, errors.NewNotFoundError("record", recordID)
	}
	return record[fieldName], nil
}

// UpdateField implements store.RecordStore.
func (s *Store) UpdateField(_ context.Context, recordID, fieldName string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return errors.NewNotFoundError("record", recordID)
	}
	record[fieldName] = value
	return nil
}

// GetAuditData implements store.RecordStore.
func (s *Store) GetAuditData(_ context.Context, recordID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.audit[recordID]
	if !ok {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encoding audit_data for record %s: %w", recordID, err)
	}
	return data, nil
}

// MergeAuditData implements store.RecordStore: keys in patch replace the
// same keys in the stored blob, other keys survive.
func (s *Store) MergeAuditData(_ context.Context, recordID string, patch []byte) error {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return errors.NewParseError("json", "audit_data patch", err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return errors.NewNotFoundError("record", recordID)
	}
	blob, ok := s.audit[recordID]
	if !ok {
		blob = make(map[string]json.RawMessage)
		s.audit[recordID] = blob
	}
	for field, entry := range incoming {
		blob[field] = entry
	}
	return nil
}

// GetResearchRows implements store.RecordStore.
func (s *Store) GetResearchRows(_ context.Context, recordID string) (map[string]store.ResearchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.research[recordID]
	if !ok {
		return map[string]store.ResearchRow{}, nil
	}
	return maps.Clone(rows), nil
}
