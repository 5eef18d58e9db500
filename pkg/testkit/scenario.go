// Package testkit holds test fixtures (sqlite database, miniredis cache,
// temp-dir disk) and a JSON-scenario runner for HTTP handler tests.
//
// A scenario file names one request and what should come back:
//
//	{
//	  "name": "session exchange sets the student cookie",
//	  "requestMethod": "POST",
//	  "requestUrl": "/api/sessions",
//	  "requestBody": {"code": "oauth-code-1"},
//	  "expectedCode": 200,
//	  "expectedCookies": {"printhub_session": "tok-asha"},
//	  "httpMocks": [{"method": "POST", "matchUrl": "https://id.test/sessions",
//	                 "body": {"session_token": "tok-asha"}}]
//	}
//
// Larger bodies live in files referenced by requestFileName and
// responseFileName, relative to the scenario. Keep those in a subdirectory
// so RunDir does not mistake them for scenarios.
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one request/expectation pair.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	RequestFileName string            `json:"requestFileName"`
	Headers         map[string]string `json:"headers"`
	Cookies         map[string]string `json:"cookies"`

	ExpectedCode     int             `json:"expectedCode"`
	ExpectedBody     json.RawMessage `json:"expectedBody"`
	ResponseFileName string          `json:"responseFileName"`
	// ExpectedHeaders values must appear as substrings of the response header.
	ExpectedHeaders map[string]string `json:"expectedHeaders"`
	// ExpectedCookies checks Set-Cookie: "" means the cookie was cleared,
	// "*" means any non-empty value, anything else must match exactly.
	ExpectedCookies map[string]string `json:"expectedCookies"`

	// IsMockRequired fails the scenario on an outgoing call no mock matches.
	IsMockRequired bool       `json:"isMockRequired"`
	HTTPMocks      []MockStep `json:"httpMocks"`

	dir string
}

// MockStep is one intercepted outgoing HTTP call.
type MockStep struct {
	// Method restricts the match to one HTTP method. Empty matches any.
	Method string `json:"method"`
	// MatchURL is a prefix of the outgoing URL. Empty matches any URL.
	MatchURL string `json:"matchUrl"`
	// MatchBody must appear somewhere in the outgoing request body.
	MatchBody string `json:"matchBody"`

	// Status defaults to 200.
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

// LoadScenario reads path and checks the required fields.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: %w", err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: %w", err)
	}

	s := &Scenario{dir: filepath.Dir(abs)}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("testkit: %s: %w", filepath.Base(abs), err)
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("testkit: %s: %w", filepath.Base(abs), err)
	}
	return s, nil
}

func (s *Scenario) check() error {
	var problems []error
	if s.Name == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if s.RequestURL == "" {
		problems = append(problems, errors.New("requestUrl is required"))
	}
	if s.ExpectedCode == 0 {
		problems = append(problems, errors.New("expectedCode is required"))
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		problems = append(problems, errors.New("requestBody and requestFileName are exclusive"))
	}
	if len(s.ExpectedBody) > 0 && s.ResponseFileName != "" {
		problems = append(problems, errors.New("expectedBody and responseFileName are exclusive"))
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	if s.RequestMethod == "" {
		s.RequestMethod = http.MethodGet
	}
	return errors.Join(problems...)
}

// requestPayload is the inline body, else the request file, else nil.
func (s *Scenario) requestPayload() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	return s.read(s.RequestFileName)
}

// expectedPayload is the inline expectation, else the response file, else
// nil when the body is not checked.
func (s *Scenario) expectedPayload() ([]byte, error) {
	if len(s.ExpectedBody) > 0 {
		return s.ExpectedBody, nil
	}
	return s.read(s.ResponseFileName)
}

func (s *Scenario) read(name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.dir, name)
	}
	return os.ReadFile(name)
}
