package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

func TestFileStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	s := New(path)
	ctx := context.Background()

	doc := model.NewPartDocument("Bracket", units.Inch)
	require.NoError(t, doc.AddFeature(&model.Fillet{Radius: 0.002, EdgeSelector: "all"}))

	require.NoError(t, s.SaveSnapshot(ctx, doc))
	require.NoError(t, doc.AddFeature(&model.Hole{Diameter: 0.005, Depth: 0.01}))
	require.NoError(t, s.SaveSnapshot(ctx, doc))

	latest, err := s.Latest(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, 2, latest.Revision)
	require.Equal(t, "Bracket", latest.Name)
	require.Equal(t, "in", latest.Units)
	require.Len(t, latest.Features, 2)

	// A fresh store reloads the persisted file.
	reopened := New(path)
	latest, err = reopened.Latest(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, 2, latest.Revision)

	history, err := reopened.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 2, history[0].Revision, "newest first")
	require.Equal(t, 1, history[1].Revision)
}

func TestFileStore_LatestUnknownDocument(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "snapshots.json"))
	_, err := s.Latest(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNoSnapshot)
}
