package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// verifier reports every mismatch for one scenario response. The body is
// printed alongside each failure.
type verifier struct {
	t    *testing.T
	s    *Scenario
	body []byte
}

func (v verifier) status(got int) {
	v.t.Helper()
	assert.Equal(v.t, v.s.ExpectedCode, got, "[%s] status\nbody: %s", v.s.Name, v.body)
}

func (v verifier) headers(got http.Header) {
	v.t.Helper()
	for k, want := range v.s.ExpectedHeaders {
		assert.Contains(v.t, got.Get(k), want, "[%s] header %s", v.s.Name, k)
	}
}

func (v verifier) cookies(set []*http.Cookie) {
	v.t.Helper()
	byName := make(map[string]*http.Cookie, len(set))
	for _, c := range set {
		byName[c.Name] = c
	}
	for name, want := range v.s.ExpectedCookies {
		c, ok := byName[name]
		if !assert.True(v.t, ok, "[%s] cookie %s was not set", v.s.Name, name) {
			continue
		}
		switch want {
		case "":
			assert.True(v.t, c.MaxAge < 0 || c.Value == "", "[%s] cookie %s should be cleared", v.s.Name, name)
		case "*":
			assert.NotEmpty(v.t, c.Value, "[%s] cookie %s", v.s.Name, name)
		default:
			assert.Equal(v.t, want, c.Value, "[%s] cookie %s", v.s.Name, name)
		}
	}
}

func (v verifier) jsonSubset(want []byte) {
	v.t.Helper()
	var exp, act any
	if err := json.Unmarshal(want, &exp); err != nil {
		v.t.Fatalf("[%s] expected body is not JSON: %v", v.s.Name, err)
	}
	if err := json.Unmarshal(v.body, &act); err != nil {
		v.t.Errorf("[%s] response is not JSON: %v\nbody: %s", v.s.Name, err, v.body)
		return
	}
	if diffs := DiffJSON("", exp, act); len(diffs) > 0 {
		v.t.Errorf("[%s] body mismatch:\n  %s\nbody: %s", v.s.Name, strings.Join(diffs, "\n  "), v.body)
	}
}

// DiffJSON compares decoded JSON values. Objects in expected are a subset
// of actual: extra keys such as ids and timestamps are ignored. Arrays
// compare element-wise and must have equal length.
func DiffJSON(at string, expected, actual any) []string {
	if at == "" {
		at = "$"
	}
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: want object, got %s", at, describe(actual))}
		}
		keys := make([]string, 0, len(exp))
		for k := range exp {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			av, ok := act[k]
			if !ok {
				out = append(out, fmt.Sprintf("%s.%s: missing", at, k))
				continue
			}
			out = append(out, DiffJSON(at+"."+k, exp[k], av)...)
		}
		return out

	case []any:
		act, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: want array, got %s", at, describe(actual))}
		}
		var out []string
		if len(exp) != len(act) {
			out = append(out, fmt.Sprintf("%s: want %d elements, got %d", at, len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			out = append(out, DiffJSON(fmt.Sprintf("%s[%d]", at, i), exp[i], act[i])...)
		}
		return out

	default:
		if !reflect.DeepEqual(expected, actual) {
			return []string{fmt.Sprintf("%s: want %s, got %s", at, describe(expected), describe(actual))}
		}
		return nil
	}
}

func describe(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	b, _ := json.Marshal(v)
	return string(b)
}
