package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport answers outgoing requests from a scenario's HTTPMocks.
// Install it on pkg/http's DefaultClient; the runner does this itself.
type MockTransport struct {
	strict bool

	mu    sync.Mutex
	steps []MockStep
	hits  []int
}

func NewMockTransport(s *Scenario) *MockTransport {
	return &MockTransport{
		strict: s.IsMockRequired,
		steps:  s.HTTPMocks,
		hits:   make([]int, len(s.HTTPMocks)),
	}
}

// RoundTrip replies with the first step matching the method, URL prefix
// and body fragment. Unmatched calls fail in strict mode and get a 404
// otherwise.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		payload, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, step := range m.steps {
		if !step.matches(req, payload) {
			continue
		}
		m.hits[i]++
		return step.reply(req), nil
	}

	if m.strict {
		return nil, fmt.Errorf("testkit: no mock for %s %s", req.Method, req.URL)
	}
	return MockStep{Status: http.StatusNotFound, Body: []byte(`{"error":"no mock configured"}`)}.reply(req), nil
}

// AssertAllCalled returns one error per step that never matched.
func (m *MockTransport) AssertAllCalled() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for i, n := range m.hits {
		if n == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock %s %q was never called", m.steps[i].Method, m.steps[i].MatchURL))
		}
	}
	return errs
}

func (s MockStep) matches(req *http.Request, payload []byte) bool {
	if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
		return false
	}
	if !strings.HasPrefix(req.URL.String(), s.MatchURL) {
		return false
	}
	return s.MatchBody == "" || bytes.Contains(payload, []byte(s.MatchBody))
}

func (s MockStep) reply(req *http.Request) *http.Response {
	code := s.Status
	if code == 0 {
		code = http.StatusOK
	}
	h := http.Header{"Content-Type": {"application/json"}}
	for k, v := range s.Headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(s.Body)),
		ContentLength: int64(len(s.Body)),
		Request:       req,
	}
}
