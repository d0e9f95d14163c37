package casestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

// FileStore keeps every case in one JSON document, rewritten on each change.
type FileStore struct {
	path  string
	mu    sync.Mutex
	cases map[string]claims.Case
}

type fileState struct {
	Cases map[string]claims.Case `json:"cases"`
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, cases: map[string]claims.Case{}}
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read case file: %w", err)
	}
	var state fileState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("decode case file: %w", err)
	}
	if state.Cases != nil {
		s.cases = state.Cases
	}
	return s, nil
}

func (s *FileStore) Put(_ context.Context, c claims.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.cases[c.CaseID]
	s.cases[c.CaseID] = c
	if err := s.save(); err != nil {
		if had {
			s.cases[c.CaseID] = prev
		} else {
			delete(s.cases, c.CaseID)
		}
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (claims.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return claims.Case{}, ErrNotFound
	}
	return c, nil
}

func (s *FileStore) List(_ context.Context, status claims.CaseStatus) ([]claims.Case, error) {
	s.mu.Lock()
	out := make([]claims.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	sortCases(out)
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.cases[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.cases, id)
	if err := s.save(); err != nil {
		s.cases[id] = prev
		return err
	}
	return nil
}

func (s *FileStore) Ping(context.Context) error { return nil }

func (s *FileStore) Close() error { return nil }

// save must be called with mu held.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(fileState{Cases: s.cases}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
