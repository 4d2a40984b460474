package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/core"
)

// recordFail captures what a middleware passed to its FailFunc.
type recordFail struct {
	err    error
	status int
}

func (f *recordFail) fail(w http.ResponseWriter, _ *http.Request, err error, status int) {
	f.err, f.status = err, status
	w.WriteHeader(status)
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"no trusted proxies", nil, "10.0.0.1:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "10.0.0.1:5000"},
		{"untrusted remote", []string{"10.0.0.0/8"}, "192.168.1.1:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "192.168.1.1:5000"},
		{"real ip from trusted", []string{"10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"forwarded for first entry", []string{"10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.1.2.3"}, "5.6.7.8"},
		{"single address entry", []string{"127.0.0.1"}, "127.0.0.1:5000", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3:5000"},
		{"invalid entry skipped", []string{"bogus", "10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientIP(req))

	req.RemoteAddr = "1.2.3.4"
	assert.Equal(t, "1.2.3.4", ClientIP(req))
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)

	ok, wait := rl.Allow("a")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// Other clients have their own bucket.
	ok, _ = rl.Allow("b")
	assert.True(t, ok)

	// One token per second at 60/min.
	now = now.Add(time.Second)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(20 * time.Minute)
	rl.Allow("new")

	assert.Equal(t, 1, rl.Prune(10*time.Minute))
	assert.Equal(t, 1, rl.Clients())
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	var f recordFail
	h := rl.Middleware(f.fail)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.ErrorIs(t, f.err, ErrRateLimited)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

type stubAuth struct {
	claims *auth.Claims
	err    error
	token  string
}

func (s *stubAuth) Authenticate(token string) (*auth.Claims, error) {
	s.token = token
	return s.claims, s.err
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		stub       *stubAuth
		wantStatus int
		wantUser   string
	}{
		{"valid", "Bearer abc", &stubAuth{claims: &auth.Claims{UserID: "u1"}}, http.StatusOK, "u1"},
		{"case insensitive scheme", "bearer abc", &stubAuth{claims: &auth.Claims{UserID: "u2"}}, http.StatusOK, "u2"},
		{"missing header", "", &stubAuth{}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", &stubAuth{}, http.StatusUnauthorized, ""},
		{"empty token", "Bearer  ", &stubAuth{}, http.StatusUnauthorized, ""},
		{"rejected", "Bearer abc", &stubAuth{err: auth.ErrInvalidToken}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f recordFail
			var gotUser string
			h := BearerAuth(tt.stub, f.fail)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = core.UserIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantStatus == http.StatusUnauthorized {
				require.Error(t, f.err)
				assert.True(t, errors.Is(f.err, auth.ErrInvalidToken))
			} else {
				assert.Equal(t, "abc", tt.stub.token)
			}
		})
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
