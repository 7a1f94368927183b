// Package ner wraps the external named-entity-recognition collaborator.
// Callers treat any failure here as "no entities": the ingestion pipeline
// absorbs errors from this package instead of surfacing them.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medanalyzer/platform/pkg/common/httpclient"
	"github.com/medanalyzer/platform/pkg/common/models"
)

// Client extracts labeled entities from free text.
type Client interface {
	ExtractEntities(ctx context.Context, text string) ([]models.Entity, error)
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Entities []models.Entity `json:"entities"`
}

// HTTPClient talks to the NER model service over its JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.New(timeout),
	}
}

func (c *HTTPClient) ExtractEntities(ctx context.Context, text string) ([]models.Entity, error) {
	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding ner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract_entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building ner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ner service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ner service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding ner response: %w", err)
	}

	return decoded.Entities, nil
}
