// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/host"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSummary() export.Summary {
	return export.Summary{
		Exported:    2,
		Overwritten: 1,
		Written: []export.WrittenFile{
			{BodyName: "Part", Path: "/out/Part (1).stl"},
			{BodyName: "Part", Path: "/out/Part (2).stl"},
		},
		Errors: []export.JobError{
			{BodyName: "Cylinder1", Message: "permission denied"},
		},
		OutputDir: "/out",
		Quality:   host.QualityMedium,
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	batches, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, "Bracket Assembly", sampleSummary())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	b, err := s.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Bracket Assembly", b.Design)
	assert.Equal(t, "/out", b.OutputDir)
	assert.Equal(t, host.QualityMedium, b.Quality)
	assert.Equal(t, 2, b.Exported)
	assert.Equal(t, 1, b.Overwritten)
	assert.Equal(t, 1, b.Failed)
	assert.False(t, b.Cancelled)
	assert.False(t, b.CreatedAt.IsZero())

	require.Len(t, b.Jobs, 3)
	assert.Equal(t, "/out/Part (1).stl", b.Jobs[0].Path)
	assert.Empty(t, b.Jobs[0].Error)
	assert.Equal(t, "Cylinder1", b.Jobs[2].BodyName)
	assert.Equal(t, "permission denied", b.Jobs[2].Error)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ByDisplayedPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, "Bracket Assembly", sampleSummary())
	require.NoError(t, err)

	// The list view shows the first 8 characters; that prefix must resolve.
	b, err := s.Get(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Len(t, b.Jobs, 3)
}

func TestGet_AmbiguousPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"aaaa1111", "aaaa2222"} {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO batches (id, design, output_dir, quality, exported, overwritten, failed, cancelled, created_at)
			VALUES (?, 'D', '/out', 'High', 1, 0, 0, 0, 1)
		`, id)
		require.NoError(t, err)
	}

	_, err := s.Get(ctx, "aaaa")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	b, err := s.Get(ctx, "aaaa1")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111", b.ID)
}

func TestList_NewestFirstAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Record(ctx, "Design", sampleSummary())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// List omits job rows for speed.
	assert.Empty(t, all[0].Jobs)

	// Every recorded batch shows up.
	seen := map[string]bool{}
	for _, b := range all {
		seen[b.ID] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id], "batch %s missing from list", id)
	}
}

func TestRecord_CancelledBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sum := sampleSummary()
	sum.Cancelled = true

	id, err := s.Record(ctx, "Design", sum)
	require.NoError(t, err)

	b, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, b.Cancelled)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, "Design", sampleSummary())
		require.NoError(t, err)
	}

	require.NoError(t, s.Prune(ctx, 2))

	batches, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	// keep=0 means unlimited: nothing is removed.
	require.NoError(t, s.Prune(ctx, 0))
	batches, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}
