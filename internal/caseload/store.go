// Package caseload holds the caller-owned, ordered collection of client records.
package caseload

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"caseburn/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no record has the requested id.
	ErrNotFound = errors.New("caseload: client not found")
	// ErrDuplicateID indicates an id is already in use or was used before.
	ErrDuplicateID = errors.New("caseload: duplicate client id")
)

// Store is an ordered collection of client records keyed by id.
// Insertion order is preserved; ids are never reused within one Store.
// A Store is not safe for concurrent use.
type Store struct {
	records []model.ClientRecord
	index   map[string]int
	retired map[string]struct{}
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the UUID generator used for new records.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithRetired marks ids used by earlier sessions so they are never handed out again.
func WithRetired(ids []string) Option {
	return func(s *Store) {
		for _, id := range ids {
			s.retired[id] = struct{}{}
		}
	}
}

// NewStore creates a store holding records in the given order.
// Records without an id are assigned one.
func NewStore(records []model.ClientRecord, opts ...Option) (*Store, error) {
	s := &Store{
		index:   make(map[string]int),
		retired: make(map[string]struct{}),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.Replace(records); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []model.ClientRecord {
	out := make([]model.ClientRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (model.ClientRecord, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.ClientRecord{}, false
	}
	return s.records[i], true
}

// Add appends a record, assigning an id if it has none, and returns the stored copy.
func (s *Store) Add(rec model.ClientRecord) (model.ClientRecord, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		rec.ID = s.nextID()
	} else if !s.available(rec.ID) {
		return model.ClientRecord{}, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}

	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return rec, nil
}

// Append adds several records. Either all are added or none are.
func (s *Store) Append(recs []model.ClientRecord) error {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup || !s.available(id) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}

	for _, r := range recs {
		if _, err := s.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// Update replaces the record that has rec.ID, keeping its position.
func (s *Store) Update(rec model.ClientRecord) error {
	i, ok := s.index[rec.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.ID)
	}
	s.records[i] = rec
	return nil
}

// SetNotes replaces the notes of one record.
func (s *Store) SetNotes(id, notes string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.records[i].Notes = notes
	return nil
}

// Delete removes a record. Its id is retired and cannot be added again.
func (s *Store) Delete(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	s.retired[id] = struct{}{}
	s.reindex()
	return nil
}

// Reset removes every record.
func (s *Store) Reset() {
	for _, r := range s.records {
		s.retired[r.ID] = struct{}{}
	}
	s.records = nil
	s.index = make(map[string]int)
}

// Replace swaps the whole list, as when restoring a backup. Records without
// an id, or whose id was retired, are assigned a fresh one. Duplicate ids in
// recs are rejected and leave the store unchanged.
func (s *Store) Replace(recs []model.ClientRecord) error {
	next := make([]model.ClientRecord, len(recs))
	index := make(map[string]int, len(recs))
	for i, r := range recs {
		r.ID = strings.TrimSpace(r.ID)
		if _, retired := s.retired[r.ID]; retired {
			r.ID = ""
		}
		if r.ID != "" {
			if _, dup := index[r.ID]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
			}
			index[r.ID] = i
		}
		next[i] = r
	}

	for i := range next {
		if next[i].ID != "" {
			continue
		}
		for {
			id := s.newID()
			if _, taken := index[id]; !taken && s.available(id) {
				next[i].ID = id
				index[id] = i
				break
			}
		}
	}

	for _, r := range s.records {
		if _, kept := index[r.ID]; !kept {
			s.retired[r.ID] = struct{}{}
		}
	}

	s.records = next
	s.index = index
	return nil
}

// Retired returns every id that can no longer be used, sorted.
func (s *Store) Retired() []string {
	out := make([]string, 0, len(s.retired))
	for id := range s.retired {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s *Store) available(id string) bool {
	if _, used := s.index[id]; used {
		return false
	}
	_, retired := s.retired[id]
	return !retired
}

func (s *Store) nextID() string {
	for {
		id := s.newID()
		if s.available(id) {
			return id
		}
	}
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.ID] = i
	}
}
