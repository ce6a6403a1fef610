package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Content types understood by the users API
const (
	ContentTypeJSON       = "application/json"
	ContentTypeJSONPatch  = "application/json-patch+json"
	ContentTypeMergePatch = "application/merge-patch+json"
)

// ErrNotFound is returned for 404 responses
var ErrNotFound = errors.New("user not found")

// Client is an HTTP client for the users API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (%s)", e.Message, e.Code)
	if len(e.Fields) == 0 {
		return msg
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		msg += fmt.Sprintf("\n  %s: %s", f, e.Fields[f])
	}
	return msg
}

// Do performs an HTTP request. body, when not nil, is sent as is with contentType.
// The response headers are returned on success.
func (c *Client) Do(method, path, contentType string, body []byte, result any) (http.Header, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err == nil && apiErr.Code != "" {
			return nil, apiErr
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp.Header, nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) (http.Header, error) {
	return c.Do(http.MethodGet, path, "", nil, result)
}

// Head performs a HEAD request
func (c *Client) Head(path string) (http.Header, error) {
	return c.Do(http.MethodHead, path, "", nil, nil)
}

// Send marshals body as JSON and sends it with method
func (c *Client) Send(method, path string, body, result any) (http.Header, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.Do(method, path, ContentTypeJSON, data, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(path string) error {
	_, err := c.Do(http.MethodDelete, path, "", nil, nil)
	return err
}

// Options performs an OPTIONS request
func (c *Client) Options(path string) (http.Header, error) {
	return c.Do(http.MethodOptions, path, "", nil, nil)
}
