package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest captures what the fake backend received.
type RecordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
	Form        url.Values
	FileName    string
	FileContent []byte
}

type fakeResponse struct {
	status int
	body   string
}

// FakeBackend is an in-memory stand-in for the evaluation backend.
type FakeBackend struct {
	URL string

	mu        sync.Mutex
	responses map[string]fakeResponse
	holds     map[string]chan struct{}
	requests  []RecordedRequest
}

// StartBackend launches a fake backend closed at test cleanup. Unknown
// routes answer 404 with a FastAPI-style detail body.
func StartBackend(t testing.TB) *FakeBackend {
	t.Helper()
	backend := &FakeBackend{responses: map[string]fakeResponse{}, holds: map[string]chan struct{}{}}
	router := chi.NewRouter()
	router.HandleFunc("/*", backend.serve)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	backend.URL = server.URL
	return backend
}

// Respond sets the canned response for path.
func (b *FakeBackend) Respond(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[path] = fakeResponse{status: status, body: body}
}

// Hold makes requests on path wait until the returned release func is
// called. Release is idempotent and also runs at test cleanup.
func (b *FakeBackend) Hold(t testing.TB, path string) func() {
	t.Helper()
	gate := make(chan struct{})
	b.mu.Lock()
	b.holds[path] = gate
	b.mu.Unlock()
	var once sync.Once
	release := func() {
		once.Do(func() { close(gate) })
	}
	t.Cleanup(release)
	return release
}

// Requests returns the requests received on path.
func (b *FakeBackend) Requests(path string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RecordedRequest
	for _, req := range b.requests {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// Last returns the most recent request on path.
func (b *FakeBackend) Last(t testing.TB, path string) RecordedRequest {
	t.Helper()
	reqs := b.Requests(path)
	if len(reqs) == 0 {
		t.Fatalf("expected a request on %s", path)
	}
	return reqs[len(reqs)-1]
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	recorded := RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		ContentType: r.Header.Get("Content-Type"),
	}
	switch {
	case strings.HasPrefix(recorded.ContentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			recorded.Form = url.Values(r.MultipartForm.Value)
			if file, header, err := r.FormFile("file"); err == nil {
				recorded.FileName = header.Filename
				recorded.FileContent, _ = io.ReadAll(file)
				_ = file.Close()
			}
		}
	case strings.HasPrefix(recorded.ContentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err == nil {
			recorded.Form = r.PostForm
		}
	default:
		recorded.Body, _ = io.ReadAll(r.Body)
	}
	b.mu.Lock()
	b.requests = append(b.requests, recorded)
	resp, ok := b.responses[r.URL.Path]
	gate := b.holds[r.URL.Path]
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.Copy(w, bytes.NewBufferString(`{"detail":"Not Found"}`))
		return
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}
