package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Request describes one call made against an http.Handler.
type Request struct {
	Method string
	Path   string
	Body   any    // marshalled to JSON unless nil or already []byte
	Token  string // sent as "Bearer <token>" when set
}

// Do serves req through h and returns the recorder.
func Do(t testing.TB, h http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "testkit: marshal request body")
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.Method, req.Path, body)
	if req.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// DecodeJSON unmarshals the recorded body into a value of type T.
func DecodeJSON[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "testkit: body is not valid JSON\nbody: %s", w.Body.String())
	return v
}

// AssertJSONEq compares the recorded body with expected after normalising
// both through JSON, so key order and whitespace never matter.
func AssertJSONEq(t testing.TB, expected string, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.JSONEq(t, expected, w.Body.String())
}
