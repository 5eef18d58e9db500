package testkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/healthz":
		w.Write([]byte(`{"status":"ok","checks":{"db":"ok"}}`)) //nolint:errcheck
	case "/login":
		var in struct{ User string }
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.User == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"user required"}`)) //nolint:errcheck
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "vendor_session", Value: "tok-" + in.User})
		http.SetCookie(w, &http.Cookie{Name: "stale", MaxAge: -1})
		w.Write([]byte(`{"success":true}`)) //nolint:errcheck
	case "/whoami":
		c, err := r.Cookie("vendor_session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"token":"` + c.Value + `"}`)) //nolint:errcheck
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}`)) //nolint:errcheck
	}
})

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, testHandler, "testdata")
}

func TestLoadScenarioRejectsIncompleteFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"requestBody":{"a":1},"requestFileName":"x.json"}`), 0o644))

	_, err := testkit.LoadScenario(p)
	require.Error(t, err)
	for _, want := range []string{"name is required", "requestUrl is required", "expectedCode is required", "exclusive"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestMockTransportMatchesBody(t *testing.T) {
	mt := testkit.NewMockTransport(&testkit.Scenario{
		HTTPMocks: []testkit.MockStep{
			{Method: "POST", MatchURL: "https://ids.example/sessions", MatchBody: `"code":"ok"`, Status: 201, Headers: map[string]string{"X-Test": "1"}},
		},
	})

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodPost, "https://ids.example/sessions", strings.NewReader(`{"code":"nope"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = mt.RoundTrip(httptest.NewRequest(http.MethodPost, "https://ids.example/sessions", strings.NewReader(`{"code":"ok"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Test"))
}

func TestMockTransportMatchesMethodAndPrefix(t *testing.T) {
	s := &testkit.Scenario{
		Name:           "mock transport",
		IsMockRequired: true,
		HTTPMocks: []testkit.MockStep{
			{Method: "GET", MatchURL: "https://ids.example/users/me", Body: json.RawMessage(`{"id":"u1"}`)},
		},
	}
	mt := testkit.NewMockTransport(s)

	_, err := mt.RoundTrip(httptest.NewRequest(http.MethodPost, "https://ids.example/users/me", nil))
	assert.Error(t, err, "method mismatch must not match")
	assert.Len(t, mt.AssertAllCalled(), 1)

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://ids.example/users/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, mt.AssertAllCalled())
}

func TestDiffJSONTreatsExpectedAsSubset(t *testing.T) {
	var exp, act interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"pending","files":[{"copies":1}]}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"status":"pending","files":[{"id":1,"copies":1}]}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"status":"accepted"}`), &exp))
	assert.Len(t, testkit.DiffJSON("", exp, act), 1)
}

func TestFixtures(t *testing.T) {
	db := testkit.NewDB(t)
	require.NoError(t, db.Create(&models.PricingConfig{BWSinglePage: 2, DeliveryFee: 20}).Error)

	var n int64
	require.NoError(t, db.Model(&models.PricingConfig{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	store, _ := testkit.NewCache(t)
	assert.True(t, store.Available())
	assert.NotNil(t, testkit.NewDisk(t))
}
