package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/entryship/internal/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"jsonl", FormatJSONL, false},
		{"CSV", FormatCSV, false},
		{"xml", FormatAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidConfig, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDetectFormatAndDestination(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("/data/scene.CSV"))
	assert.Equal(t, FormatCSV, DetectFormat("scene.tsv"))
	assert.Equal(t, FormatJSONL, DetectFormat("scene.jsonl"))
	assert.Equal(t, FormatJSONL, DetectFormat("scene"))

	assert.Equal(t, "scene", Destination("/data/scene.jsonl"))
	assert.Equal(t, "scene.v2", Destination("scene.v2.csv"))
	assert.Equal(t, "scene", Destination("scene"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "scene.tsv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id\tname\n1\talpha\n"), 0o600))
	jsonPath := filepath.Join(dir, "scene.jsonl")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"id":1}`+"\n"), 0o600))

	r, err := Open(csvPath, Options{})
	require.NoError(t, err)
	got := readAll(t, r.Next)
	require.NoError(t, r.Close())
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0]["name"])

	r, err = Open(jsonPath, Options{Format: FormatJSONL})
	require.NoError(t, err)
	got = readAll(t, r.Next)
	require.NoError(t, r.Close())
	require.Len(t, got, 1)

	_, err = Open(csvPath, Options{Delimiter: ";;"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = Open(filepath.Join(dir, "missing.jsonl"), Options{})
	assert.ErrorContains(t, err, "open input")
}
