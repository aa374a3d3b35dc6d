// Package store persists document snapshots taken on Save commands. Two
// backends share one surface: a JSON file for local sessions and Postgres
// when a DSN is configured. Reads go through a bounded LRU cache.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"cadpilot/internal/model"
)

var ErrNoSnapshot = errors.New("store: no snapshot for document")

const snapshotCacheSize = 256

// Snapshot is the persisted shape of a part document at save time. Feature
// geometry stays in memory; the snapshot records the auditable history.
type Snapshot struct {
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	Units      string    `json:"units"`
	Features   []string  `json:"features"`
	Revision   int       `json:"revision"`
	SavedAt    time.Time `json:"saved_at"`
}

func snapshotOf(doc *model.PartDocument, revision int) Snapshot {
	features := make([]string, 0, len(doc.Features))
	for _, f := range doc.Features {
		features = append(features, f.Describe())
	}
	return Snapshot{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Units:      doc.Units.String(),
		Features:   features,
		Revision:   revision,
		SavedAt:    time.Now().UTC(),
	}
}

// Store dispatches to the file backend unless a database is attached.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byDoc    map[string][]Snapshot

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Snapshot]
}

// New opens a file-backed store at path.
func New(path string) *Store {
	cache, _ := lru.New[string, Snapshot](snapshotCacheSize)
	return &Store{
		path:  path,
		byDoc: make(map[string][]Snapshot),
		cache: cache,
	}
}

// NewPostgres opens a database-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, _ := lru.New[string, Snapshot](snapshotCacheSize)
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv prefers Postgres when SNAPSHOT_PG_DSN is set and reachable,
// falling back to the file backend.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("SNAPSHOT_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// SaveSnapshot records the document's current state as its next revision.
func (s *Store) SaveSnapshot(ctx context.Context, doc *model.PartDocument) error {
	if s == nil || doc == nil {
		return nil
	}
	var (
		snap Snapshot
		err  error
	)
	if s.db != nil {
		snap, err = s.saveDB(ctx, doc)
	} else {
		snap, err = s.saveFile(doc)
	}
	if err != nil {
		return err
	}
	s.cache.Add(doc.ID, snap)
	return nil
}

// Latest returns the most recent snapshot for a document.
func (s *Store) Latest(ctx context.Context, documentID string) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	if snap, ok := s.cache.Get(documentID); ok {
		return snap, nil
	}
	var (
		snap Snapshot
		err  error
	)
	if s.db != nil {
		snap, err = s.latestDB(ctx, documentID)
	} else {
		snap, err = s.latestFile(documentID)
	}
	if err != nil {
		return Snapshot{}, err
	}
	s.cache.Add(documentID, snap)
	return snap, nil
}

// History returns all snapshots for a document, newest first.
func (s *Store) History(ctx context.Context, documentID string) ([]Snapshot, error) {
	if s == nil {
		return nil, nil
	}
	if s.db != nil {
		return s.historyDB(ctx, documentID)
	}
	return s.historyFile(documentID)
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.db.Close()
	}
	return s.flushFile()
}
