// Package xray integrates the external X-ray analysis collaborator. Unlike
// entity extraction, X-ray calls are the whole point of their endpoints, so
// collaborator failures surface to the caller instead of degrading.
package xray

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/medanalyzer/platform/pkg/common/httpclient"
)

// ErrUnavailable wraps any transport or non-2xx failure from the
// collaborator so handlers can map it to a single status.
type ErrUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("xray collaborator %s failed: %v", e.Op, e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: httpclient.New(timeout)}
}

type imagePart struct {
	field    string
	filename string
	data     []byte
}

// Analyze submits a single radiograph and returns the collaborator's raw
// analysis document.
func (c *Client) Analyze(ctx context.Context, filename string, image []byte) (map[string]interface{}, error) {
	return c.post(ctx, "analyze", nil, imagePart{"file", filename, image})
}

// Compare submits a prior and a current radiograph for interval-change
// assessment.
func (c *Client) Compare(ctx context.Context, prevName string, prev []byte, currName string, curr []byte) (map[string]interface{}, error) {
	return c.post(ctx, "compare", nil,
		imagePart{"previous", prevName, prev},
		imagePart{"current", currName, curr})
}

// AskQuestion runs visual question answering over a radiograph.
func (c *Client) AskQuestion(ctx context.Context, filename string, image []byte, question string) (map[string]interface{}, error) {
	return c.post(ctx, "qna", map[string]string{"question": question},
		imagePart{"file", filename, image})
}

func (c *Client) post(ctx context.Context, op string, fields map[string]string, parts ...imagePart) (map[string]interface{}, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, part := range parts {
		fw, err := writer.CreateFormFile(part.field, part.filename)
		if err != nil {
			return nil, fmt.Errorf("building %s request: %w", op, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			return nil, fmt.Errorf("building %s request: %w", op, err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("building %s request: %w", op, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}

	var result map[string]interface{}
	err := httpclient.Retry(ctx, 2, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(body.Bytes()))
		if err != nil {
			return fmt.Errorf("building %s request: %w", op, err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &ErrUnavailable{Op: op, Err: err}
	}
	return result, nil
}
