package source

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/entryship/internal/domain"
)

func TestCSVReader(t *testing.T) {
	input := "id,name\n1,alpha\n2, beta\n"
	r := NewCSVReader(strings.NewReader(input), 0)

	got := readAll(t, r.Next)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Entry{"id": "1", "name": "alpha"}, got[0])
	assert.Equal(t, domain.Entry{"id": "2", "name": "beta"}, got[1])
	assert.Equal(t, []string{"id", "name"}, r.Header())
}

func TestCSVReader_Delimiter(t *testing.T) {
	r := NewCSVReader(strings.NewReader("id;name\n1;alpha\n"), ';')
	got := readAll(t, r.Next)
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0]["name"])
}

func TestCSVReader_HeaderOnly(t *testing.T) {
	r := NewCSVReader(strings.NewReader("id,name\n"), 0)
	_, err := r.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestCSVReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"duplicate header", "id,id\n1,2\n", "duplicate field"},
		{"empty header field", "id,\n1,2\n", "empty field name"},
		{"short row", "id,name\n1\n", "read row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVReader(strings.NewReader(tt.input), 0).Next(context.Background())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
