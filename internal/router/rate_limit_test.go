package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.RemoteAddr = "1.2.3.4:5678"
	c.Request = req
	return c, recorder
}

func TestKeyByIPAndJSONField(t *testing.T) {
	c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"email":" Test@Example.com ","password":"x"}`)

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key = %q, want %q", key, "test@example.com|1.2.3.4")
	}

	// The body must still be readable by the handler afterwards.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("re-read body: %v", err)
	}
	if len(body) == 0 {
		t.Fatalf("body was consumed by the key func")
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing field", `{"password":"x"}`},
		{"non-string field", `{"email":42}`},
		{"invalid json", `{"email":`},
	}
	for _, tc := range cases {
		c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/login", tc.body)
		if key := KeyByIPAndJSONField("email")(c); key != "1.2.3.4" {
			t.Fatalf("%s: key = %q, want client ip", tc.name, key)
		}
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	c, recorder := newTestContext(t, http.MethodGet, "/api/v1/products", "")

	handler := RateLimitMiddleware(nil, RateLimitRule{Prefix: "rl:test", WindowSeconds: 60, MaxRequests: 5}, KeyByIP)
	handler(c)
	if c.IsAborted() {
		t.Fatalf("nil client must pass requests through")
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}

func TestRateLimitMiddlewareDisabledRule(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/api/v1/products", "")

	handler := RateLimitMiddleware(nil, RateLimitRule{}, nil)
	handler(c)
	if c.IsAborted() {
		t.Fatalf("empty rule must pass requests through")
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
		ok   bool
	}{
		{int64(7), 7, true},
		{int(3), 3, true},
		{int32(9), 9, true},
		{uint64(11), 11, true},
		{uint32(13), 13, true},
		{float64(2.9), 2, true},
		{"5", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt64(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("toInt64(%v) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
