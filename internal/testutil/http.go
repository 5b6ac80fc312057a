package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chikahq/partnerhub/internal/app/system/auth"
)

// NewAuthenticatedRequest creates an HTTP request with the uid already in
// context, bypassing the session middleware.
func NewAuthenticatedRequest(method, target, uid string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithUID(req, uid)
}

// NewJSONRequest creates an authenticated request carrying body as JSON.
func NewJSONRequest(t *testing.T, method, target, uid string, body any) *http.Request {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return auth.WithUID(req, uid)
}

// DecodeResponse decodes the recorder's JSON body into dst.
func DecodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
}
