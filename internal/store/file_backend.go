package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"cadpilot/internal/model"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Snapshot
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			if row.DocumentID == "" {
				continue
			}
			s.byDoc[row.DocumentID] = append(s.byDoc[row.DocumentID], row)
		}
	})
}

func (s *Store) saveFile(doc *model.PartDocument) (Snapshot, error) {
	s.ensureLoadedFile()
	s.mu.Lock()
	snap := snapshotOf(doc, len(s.byDoc[doc.ID])+1)
	s.byDoc[doc.ID] = append(s.byDoc[doc.ID], snap)
	s.mu.Unlock()
	return snap, s.flushFile()
}

func (s *Store) latestFile(documentID string) (Snapshot, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := s.byDoc[documentID]
	if len(snaps) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	return snaps[len(snaps)-1], nil
}

func (s *Store) historyFile(documentID string) ([]Snapshot, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := s.byDoc[documentID]
	out := make([]Snapshot, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		out = append(out, snaps[i])
	}
	return out, nil
}

func (s *Store) flushFile() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	var rows []Snapshot
	for _, snaps := range s.byDoc {
		rows = append(rows, snaps...)
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
