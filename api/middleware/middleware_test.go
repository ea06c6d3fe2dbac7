package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		in   string
		want string
	}{
		{"/api/auth/register", "/api/auth/register"},
		{"/api/auth/register/", "/api/auth/register"},
		{"/api/groups/" + id, "/api/groups/:id"},
		{"/api/groups/" + id + "/members/" + uuid.NewString(), "/api/groups/:id/members/:id"},
		{"/api/users/not-a-uuid", "/api/users/not-a-uuid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEndpoint(tt.in), tt.in)
	}
}

func TestClientIPIgnoresHeadersFromUntrustedPeers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", ClientIP(r, nil))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	r.Header.Set("X-Forwarded-For", "192.0.2.44")
	assert.Equal(t, "203.0.113.9", ClientIP(r, nil))

	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", ClientIP(r, trusted))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "172.16.0.5"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	assert.Equal(t, "10.1.2.3", ClientIP(r, trusted))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(r, trusted))

	// A client supplied hop left of the real peer is ignored
	r.Header.Set("X-Forwarded-For", "6.6.6.6, 192.0.2.44, 172.16.0.5")
	assert.Equal(t, "192.0.2.44", ClientIP(r, trusted))

	r.Header.Set("X-Forwarded-For", "10.9.9.9, 172.16.0.5")
	assert.Equal(t, "10.9.9.9", ClientIP(r, trusted))

	r.RemoteAddr = "[::ffff:10.0.0.7]:443"
	r.Header.Set("X-Forwarded-For", "2001:db8::1")
	assert.Equal(t, "2001:db8::1", ClientIP(r, trusted))
}

func TestParseTrustedProxies(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "bogus", "192.0.2.1", "300.0.0.0/8"})
	assert.Error(t, err)
	assert.ErrorContains(t, err, `"bogus"`)
	require.Len(t, trusted, 2)
	assert.Equal(t, "10.0.0.0/8", trusted[0].String())
	assert.Equal(t, "192.0.2.1/32", trusted[1].String())

	trusted, err = ParseTrustedProxies(nil)
	assert.NoError(t, err)
	assert.Empty(t, trusted)
}

func TestRateLimitForEndpoint(t *testing.T) {
	mw := &Middleware{cfg: &structs.Config{RateLimit: &structs.RateLimitConfig{
		AuthLimit:    5,
		GeneralLimit: 100,
	}}}

	limit, _ := mw.getRateLimitForEndpoint("/api/auth/callback/credentials")
	assert.Equal(t, 5, limit)

	limit, _ = mw.getRateLimitForEndpoint("/api/auth/session")
	assert.Equal(t, 100, limit)

	limit, _ = mw.getRateLimitForEndpoint("/api/groups")
	assert.Equal(t, 100, limit)
}

func TestCheckCSRF(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, CheckCSRF(r, "abc"), "no cookie")

	r.AddCookie(&http.Cookie{Name: lib.CSRFCookieName, Value: "abc"})
	assert.True(t, CheckCSRF(r, "abc"))
	assert.False(t, CheckCSRF(r, "abd"))
	assert.False(t, CheckCSRF(r, ""))
}

func TestCSRFMiddleware(t *testing.T) {
	mw := &Middleware{logger: gecho.NewDefaultLogger()}
	var reached bool
	h := mw.CSRFMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	tests := []struct {
		name    string
		method  string
		session bool
		header  string
		want    bool
	}{
		{"safe method", http.MethodGet, true, "", true},
		{"bearer client", http.MethodPost, false, "", true},
		{"cookie without header", http.MethodPost, true, "", false},
		{"cookie with wrong header", http.MethodDelete, true, "nope", false},
		{"cookie with matching header", http.MethodPut, true, "tok", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			r := httptest.NewRequest(tt.method, "/api/groups", nil)
			r.AddCookie(&http.Cookie{Name: lib.CSRFCookieName, Value: "tok"})
			if tt.session {
				r.AddCookie(&http.Cookie{Name: lib.SessionCookieName, Value: "jwt"})
			}
			if tt.header != "" {
				r.Header.Set(lib.CSRFHeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.want, reached)
			if !tt.want {
				assert.Equal(t, http.StatusForbidden, rec.Code)
			}
		})
	}
}
