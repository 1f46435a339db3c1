// Package testutil provides testing utilities for the item store client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockHN is a configurable mock of the Hacker News Firebase API. Paths it
// does not know answer 200 with a null body, as the real API does.
type MockHN struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse

	// Tracking
	requestCount int
	pathCounts   map[string]int
	inFlight     int
	maxInFlight  int
	lastUA       string
}

// NewMockHN creates and starts a new mock server.
func NewMockHN() *MockHN {
	mock := &MockHN{
		responses:  make(map[string]MockResponse),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockHN) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.pathCounts[r.URL.Path]++
	m.lastUA = r.Header.Get("User-Agent")
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	resp, exists := m.responses[r.URL.Path]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if !exists {
		resp = MockResponse{StatusCode: http.StatusOK, Body: "null"}
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server URL.
func (m *MockHN) URL() string {
	return m.server.URL
}

// ItemURL returns the item address template served by the mock.
func (m *MockHN) ItemURL() string {
	return m.server.URL + "/v0/item/%s.json"
}

// UserURL returns the user address template served by the mock.
func (m *MockHN) UserURL() string {
	return m.server.URL + "/v0/user/%s.json"
}

// Close shuts down the mock server.
func (m *MockHN) Close() {
	m.server.Close()
}

// SetResponse configures the response for a path.
func (m *MockHN) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// SetItem serves body for item id.
func (m *MockHN) SetItem(id int, body string) {
	m.SetResponse(itemPath(id), MockResponse{StatusCode: http.StatusOK, Body: body})
}

// SetItemResponse serves resp for item id.
func (m *MockHN) SetItemResponse(id int, resp MockResponse) {
	m.SetResponse(itemPath(id), resp)
}

// SetUser serves body for the named user.
func (m *MockHN) SetUser(name, body string) {
	m.SetResponse(fmt.Sprintf("/v0/user/%s.json", name), MockResponse{StatusCode: http.StatusOK, Body: body})
}

// SetTree registers one item per entry of tree, each listing its map value
// as kids. Ids that only appear as kids are left unset and answer null.
func (m *MockHN) SetTree(tree map[int][]int) {
	for id, kids := range tree {
		m.SetItem(id, NewItemJSON(id, kids))
	}
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockHN) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetPathCount returns how many times path was requested.
func (m *MockHN) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// GetItemCount returns how many times item id was requested.
func (m *MockHN) GetItemCount(id int) int {
	return m.GetPathCount(itemPath(id))
}

// GetMaxInFlight returns the highest number of requests served at once.
func (m *MockHN) GetMaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// GetLastUserAgent returns the User-Agent of the latest request.
func (m *MockHN) GetLastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUA
}

func itemPath(id int) string {
	return fmt.Sprintf("/v0/item/%d.json", id)
}

// NewItemJSON renders a minimal comment item with the given kids.
func NewItemJSON(id int, kids []int) string {
	item := map[string]any{
		"id":   id,
		"type": "comment",
		"by":   "tester",
		"time": 1700000000 + id,
	}
	if len(kids) > 0 {
		item["kids"] = kids
	}
	data, _ := json.Marshal(item)
	return string(data)
}

// NewUserJSON renders a user profile listing submitted item ids.
func NewUserJSON(name string, submitted []int) string {
	user := map[string]any{
		"id":      name,
		"created": 1300000000,
		"karma":   42,
	}
	if len(submitted) > 0 {
		user["submitted"] = submitted
	}
	data, _ := json.Marshal(user)
	return string(data)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>not json</html>`,
	}
}

// NewSlowResponse wraps body in a response delayed by d.
func NewSlowResponse(body string, d time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Delay:      d,
	}
}
