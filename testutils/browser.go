package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Browser sends requests to an http.Handler and keeps the cookies it is
// given between requests. Cookie expiry is not enforced; deleted cookies
// are dropped.
type Browser struct {
	t         *testing.T
	handler   http.Handler
	cookies   map[string]*http.Cookie
	UserAgent string
}

func NewBrowser(t *testing.T, handler http.Handler) *Browser {
	return &Browser{
		t:         t,
		handler:   handler,
		cookies:   make(map[string]*http.Cookie),
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	}
}

// Do sends body as JSON when it is not nil.
func (b *Browser) Do(method, path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", b.UserAgent)
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *Browser) Cookie(name string) *http.Cookie {
	return b.cookies[name]
}

func (b *Browser) SetCookie(c *http.Cookie) {
	b.cookies[c.Name] = c
}

// Forget drops a cookie, as a browser does with a session cookie on restart.
func (b *Browser) Forget(name string) {
	delete(b.cookies, name)
}

// Clone returns a second browser holding copies of the same cookies.
func (b *Browser) Clone() *Browser {
	clone := NewBrowser(b.t, b.handler)
	clone.UserAgent = b.UserAgent
	for name, c := range b.cookies {
		copied := *c
		clone.cookies[name] = &copied
	}
	return clone
}
