// Package http commits entry batches to a remote ingestion service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"

	"github.com/google/uuid"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

const entriesEndpoint = "/v1/entries/"

// maxErrorBody bounds how much of a failed response is copied into the error.
const maxErrorBody = 4 << 10

// Config describes the remote ingestion service.
type Config struct {
	ServiceURL string
	AuthKey    string
	Hostname   string
}

// payload is the request body of one batch.
type payload struct {
	Destination string         `json:"destination"`
	Seq         int            `json:"seq"`
	Entries     []domain.Entry `json:"entries"`
}

// EntryWriter implements ports.EntryWriter using HTTP.
type EntryWriter struct {
	client ports.HTTPClient
	config Config
	logger ports.Logger
}

// NewEntryWriter creates a new HTTP entry writer.
func NewEntryWriter(client ports.HTTPClient, config Config, logger ports.Logger) *EntryWriter {
	return &EntryWriter{
		client: client,
		config: config,
		logger: logger,
	}
}

// WriteEntries posts the batch as one JSON document.
func (w *EntryWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	body, err := json.Marshal(payload{
		Destination: batch.Destination,
		Seq:         batch.Seq,
		Entries:     batch.Entries,
	})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	endpoint := w.config.ServiceURL + entriesEndpoint + url.PathEscape(batch.Destination)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	batchID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Batch-Id", batchID)
	req.Header.Set("X-Agent-Hostname", w.config.Hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	if w.config.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.AuthKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	w.logger.Debug("batch accepted",
		ports.String("destination", batch.Destination),
		ports.String("batch_id", batchID),
		ports.Int("entries", batch.Size()),
	)
	return nil
}
