package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/entryship/internal/domain"
)

func readLines(t *testing.T, path string) []domain.Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []domain.Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e domain.Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestEntryFileWriter_AppendsInOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewEntryFileWriter(dir)
	ctx := context.Background()

	require.NoError(t, w.WriteEntries(ctx, domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}, {"id": 2}})))
	require.NoError(t, w.WriteEntries(ctx, domain.NewBatch("scene", 2, []domain.Entry{{"id": 3}})))

	path, err := w.Path("scene")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scene.jsonl"), path)

	got := readLines(t, path)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, float64(i+1), e["id"])
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEntryFileWriter_InvalidDestination(t *testing.T) {
	w := NewEntryFileWriter(t.TempDir())
	for _, dest := range []string{"", ".", "..", "a/b", `a\b`} {
		err := w.WriteEntries(context.Background(), domain.NewBatch(dest, 1, []domain.Entry{{"id": 1}}))
		assert.Error(t, err, dest)
	}
}

func TestEntryFileWriter_UnencodableEntry(t *testing.T) {
	w := NewEntryFileWriter(t.TempDir())
	batch := domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}, {"bad": make(chan int)}})

	err := w.WriteEntries(context.Background(), batch)
	assert.ErrorContains(t, err, "encode entry 1 of batch 1")

	path, _ := w.Path("scene")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing may be written for a failed batch")
}

func TestEntryFileWriter_CanceledContext(t *testing.T) {
	w := NewEntryFileWriter(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteEntries(ctx, domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}}))
	assert.ErrorIs(t, err, context.Canceled)
}
