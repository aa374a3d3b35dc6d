package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cadpilot/internal/model"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS document_snapshots (
  id SERIAL PRIMARY KEY,
  document_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  units TEXT NOT NULL DEFAULT '',
  features JSONB NOT NULL DEFAULT '[]',
  revision INT NOT NULL,
  saved_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  UNIQUE (document_id, revision)
);
CREATE INDEX IF NOT EXISTS idx_document_snapshots_document_id ON document_snapshots (document_id);
`)
	})
	return s.schemaErr
}

func (s *Store) saveDB(ctx context.Context, doc *model.PartDocument) (Snapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Snapshot{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var revision int
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) FROM document_snapshots WHERE document_id = $1`, doc.ID)
	if err := row.Scan(&revision); err != nil {
		return Snapshot{}, err
	}
	snap := snapshotOf(doc, revision+1)
	features, err := json.Marshal(snap.Features)
	if err != nil {
		return Snapshot{}, err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO document_snapshots (document_id, name, units, features, revision, saved_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.DocumentID, snap.Name, snap.Units, features, snap.Revision, snap.SavedAt)
	if err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) latestDB(ctx context.Context, documentID string) (Snapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Snapshot{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT document_id, name, units, features, revision, saved_at
FROM document_snapshots WHERE document_id = $1
ORDER BY revision DESC LIMIT 1`, documentID)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshot, documentID)
	}
	return snap, nil
}

func (s *Store) historyDB(ctx context.Context, documentID string) ([]Snapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT document_id, name, units, features, revision, saved_at
FROM document_snapshots WHERE document_id = $1
ORDER BY revision DESC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap     Snapshot
		features []byte
		savedAt  time.Time
	)
	if err := row.Scan(&snap.DocumentID, &snap.Name, &snap.Units, &features, &snap.Revision, &savedAt); err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal(features, &snap.Features); err != nil {
		return Snapshot{}, err
	}
	snap.SavedAt = savedAt
	return snap, nil
}
