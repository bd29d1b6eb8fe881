// Package source fetches raw match records: from the stats API (list and
// upload) and from the static CSV export.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pable/go-cod-stats/internal/logging"
	"github.com/pable/go-cod-stats/internal/model"
)

// DefaultLimit is the page size requested from the matches endpoint.
const DefaultLimit = 10000

var (
	// ErrHTTPStatus is wrapped by StatusError for non-2xx responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrUploadRejected is returned when the upload endpoint reports failure.
	ErrUploadRejected = errors.New("upload rejected")
)

// StatusError carries the status code of a failed request.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrHTTPStatus }

// Client talks to the stats API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// envelope is the shared response body of the list and upload endpoints.
// Records are kept raw so one bad element does not sink the batch.
type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Detail  json.RawMessage   `json:"detail"`
	Data    []json.RawMessage `json:"data"`
}

// FetchMatches GETs /api/matches and returns the decoded records.
func (c *Client) FetchMatches(ctx context.Context, limit int) ([]model.RawAPIRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	url := fmt.Sprintf("%s/api/matches?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var env envelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("GET /api/matches: response has no data array")
	}
	return decodeRecords(env.Data), nil
}

// UploadResult is the successful outcome of an upload.
type UploadResult struct {
	Message string
	Records []model.RawAPIRecord
}

// Upload POSTs a CSV file to /api/upload as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, fmt.Errorf("upload %s: please select a CSV file", filename)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /api/upload: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decErr := json.NewDecoder(resp.Body).Decode(&env)
	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299 && env.Status == "success"
	if !ok {
		msg := uploadMessage(env)
		if decErr != nil && msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if msg == "" {
			msg = "Upload failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrUploadRejected, msg)
	}
	return &UploadResult{Message: env.Message, Records: decodeRecords(env.Data)}, nil
}

// uploadMessage prefers detail over message. Detail may be a string or any
// JSON value (validation errors arrive as a list).
func uploadMessage(env envelope) string {
	if len(env.Detail) > 0 && string(env.Detail) != "null" {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return s
		}
		return string(env.Detail)
	}
	return env.Message
}

func decodeRecords(raw []json.RawMessage) []model.RawAPIRecord {
	out := make([]model.RawAPIRecord, 0, len(raw))
	for i, msg := range raw {
		var r model.RawAPIRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			logging.Warn().Err(err).Int("row", i+1).Msg("skipping undecodable API record")
			continue
		}
		out = append(out, r)
	}
	return out
}
