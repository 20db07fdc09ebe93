// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FakeAPI is an in-process stand-in for the catalog API.
//
// Payloads are registered per URL path and served as JSON. Unknown paths return 404.
type FakeAPI struct {
	mu       sync.Mutex
	routes   map[string]any
	failures map[string]int
	hits     map[string]int
	queries  map[string]url.Values
	headers  map[string]http.Header
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		routes:   make(map[string]any),
		failures: make(map[string]int),
		hits:     make(map[string]int),
		queries:  make(map[string]url.Values),
		headers:  make(map[string]http.Header),
	}
}

// Handle registers payload for path.
func (f *FakeAPI) Handle(path string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = payload
}

// FailNext makes the next n requests to path answer 500.
func (f *FakeAPI) FailNext(path string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = n
}

// Hits returns how many requests path has received.
func (f *FakeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// LastQuery returns the query of the most recent request to path.
func (f *FakeAPI) LastQuery(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

// LastHeader returns the headers of the most recent request to path.
func (f *FakeAPI) LastHeader(path string) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers[path]
}

func (f *FakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	path := r.URL.Path
	f.hits[path]++
	f.queries[path] = r.URL.Query()
	f.headers[path] = r.Header.Clone()
	payload, ok := f.routes[path]
	fail := f.failures[path] > 0
	if fail {
		f.failures[path]--
	}
	f.mu.Unlock()

	switch {
	case fail:
		http.Error(w, "injected failure", http.StatusInternalServerError)
	case !ok:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}

// Start serves the fake on an httptest server closed at test cleanup.
func (f *FakeAPI) Start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// DiscardBody is a helper for tests that only care about the status of a response.
func DiscardBody(r io.Reader) {
	io.Copy(io.Discard, r)
}
