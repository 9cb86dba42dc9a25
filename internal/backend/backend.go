package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is where the evaluation backend listens unless configured.
const DefaultBaseURL = "http://localhost:8000"

// Observer receives one call per backend request.
type Observer interface {
	ObserveRequest(endpoint string, code int, err error, elapsed time.Duration)
}

// Client talks to the RAG evaluation backend over HTTP. It never retries.
type Client struct {
	baseURL  string
	client   *http.Client
	observer Observer
}

// New constructs a client for the given base URL. An empty URL selects DefaultBaseURL.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, 0)
}

// NewWithTimeout constructs a client with a per-request timeout. Zero means none.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetObserver installs a request observer.
func (c *Client) SetObserver(observer Observer) {
	c.observer = observer
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	return c.send(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data))
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, int, error) {
	return c.send(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *Client) postMultipart(ctx context.Context, path string, fields [][2]string, fileField, filename string, content io.Reader) ([]byte, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, 0, err
		}
	}
	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, 0, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, 0, err
	}
	if err := writer.Close(); err != nil {
		return nil, 0, err
	}
	return c.send(ctx, http.MethodPost, path, writer.FormDataContentType(), &buf)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	return c.send(ctx, http.MethodGet, path, "", nil)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, int, error) {
	start := time.Now()
	respBody, status, err := c.do(ctx, method, path, contentType, body)
	if c.observer != nil {
		c.observer.ObserveRequest(endpointName(path), status, err, time.Since(start))
	}
	return respBody, status, err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: endpointName(path), Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: endpointName(path), Err: err}
	}
	return data, resp.StatusCode, nil
}

// endpointName strips the query and slashes: "/logs?limit=5" becomes "logs".
func endpointName(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.Trim(path, "/")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
