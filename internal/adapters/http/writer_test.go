package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/pkg/log"
)

type received struct {
	path    string
	header  http.Header
	payload payload
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var mu sync.Mutex
	var got []received

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var p payload
		assert.NoError(t, json.Unmarshal(body, &p))

		mu.Lock()
		got = append(got, received{path: r.URL.Path, header: r.Header.Clone(), payload: p})
		mu.Unlock()

		w.WriteHeader(status)
		if status/100 != 2 {
			_, _ = w.Write([]byte("quota exceeded"))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received{}, got...)
	}
}

func TestEntryWriter_WriteEntries(t *testing.T) {
	srv, requests := newServer(t, http.StatusAccepted)
	w := NewEntryWriter(srv.Client(), Config{ServiceURL: srv.URL, AuthKey: "secret", Hostname: "importer-1"}, log.NewNoopLogger())

	batch := domain.NewBatch("test data", 3, []domain.Entry{{"id": 1}, {"id": 2}})
	require.NoError(t, w.WriteEntries(context.Background(), batch))

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, "/v1/entries/test data", got[0].path)
	assert.Equal(t, "Bearer secret", got[0].header.Get("Authorization"))
	assert.Equal(t, "application/json", got[0].header.Get("Content-Type"))
	assert.Equal(t, "importer-1", got[0].header.Get("X-Agent-Hostname"))
	assert.NotEmpty(t, got[0].header.Get("X-Batch-Id"))
	assert.Equal(t, "test data", got[0].payload.Destination)
	assert.Equal(t, 3, got[0].payload.Seq)
	require.Len(t, got[0].payload.Entries, 2)
	assert.Equal(t, float64(1), got[0].payload.Entries[0]["id"])
	assert.Equal(t, float64(2), got[0].payload.Entries[1]["id"])
}

func TestEntryWriter_ServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusTooManyRequests)
	w := NewEntryWriter(srv.Client(), Config{ServiceURL: srv.URL}, log.NewNoopLogger())

	err := w.WriteEntries(context.Background(), domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}}))
	assert.EqualError(t, err, "server returned 429: quota exceeded")
}

func TestEntryWriter_EmptyBatch(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK)
	w := NewEntryWriter(srv.Client(), Config{ServiceURL: srv.URL}, log.NewNoopLogger())

	require.NoError(t, w.WriteEntries(context.Background(), domain.Batch{Destination: "scene"}))
	assert.Empty(t, requests())
}

func TestEntryWriter_Unreachable(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK)
	url := srv.URL
	srv.Close()

	w := NewEntryWriter(http.DefaultClient, Config{ServiceURL: url}, log.NewNoopLogger())
	err := w.WriteEntries(context.Background(), domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}}))
	assert.ErrorContains(t, err, "send request")
}
