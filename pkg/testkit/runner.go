package testkit

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	outbound "github.com/campusprint/printhub/pkg/http"
)

// Run executes the scenario at path against handler as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Run(s.Name, func(t *testing.T) { play(t, handler, s) })
}

// RunDir runs every *.json scenario directly under dir, in file name order.
// Scenarios share handler, so a later file may rely on state an earlier one
// created.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()
	paths, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(paths) == 0 {
		t.Fatalf("testkit: no scenarios in %s", dir)
	}
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			t.Error(err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) { play(t, handler, s) })
	}
}

func play(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	req := buildRequest(t, s)

	mocks := NewMockTransport(s)
	restore := outbound.DefaultClient.Transport
	outbound.DefaultClient.Transport = mocks
	defer func() { outbound.DefaultClient.Transport = restore }()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	v := verifier{t: t, s: s, body: rec.Body.Bytes()}
	v.status(res.StatusCode)
	v.headers(res.Header)
	v.cookies(res.Cookies())

	want, err := s.expectedPayload()
	if err != nil {
		t.Errorf("[%s] expected body: %v", s.Name, err)
	} else if want != nil {
		v.jsonSubset(want)
	}

	for _, err := range mocks.AssertAllCalled() {
		t.Errorf("[%s] %v", s.Name, err)
	}
}

func buildRequest(t *testing.T, s *Scenario) *http.Request {
	t.Helper()
	payload, err := s.requestPayload()
	if err != nil {
		t.Fatalf("[%s] request body: %v", s.Name, err)
	}

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range s.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}
