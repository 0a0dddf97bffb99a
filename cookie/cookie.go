// Package cookie reads and writes HMAC-signed cookies on an echo request.
//
// A signed value travels as base64url(value) "." base64url(HMAC-SHA256(value)).
// The first secret signs; every configured secret is tried when verifying so
// secrets can be rotated without invalidating cookies already issued.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/config"
)

const separator = "."

var (
	ErrNoSecret         = errors.New("at least one signing secret is required")
	ErrSecretTooShort   = errors.New("signing secret is too short")
	ErrInvalidFormat    = errors.New("invalid signed cookie format")
	ErrInvalidSignature = errors.New("invalid cookie signature")
)

type Attributes struct {
	Expires  time.Time
	HttpOnly bool
	Secure   bool
	Domain   string
	SameSite http.SameSite
}

type Manager struct {
	secrets [][]byte
	path    string
}

func New(secrets []string) (*Manager, error) {
	m := &Manager{path: "/"}
	for i, s := range secrets {
		if s == "" {
			continue
		}
		if len(s) < config.MinCookieSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), config.MinCookieSecretLength)
		}
		m.secrets = append(m.secrets, []byte(s))
	}
	if len(m.secrets) == 0 {
		return nil, ErrNoSecret
	}
	return m, nil
}

func (m *Manager) WriteSigned(c echo.Context, name, value string, attrs Attributes) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    m.Sign(value),
		Path:     m.path,
		Domain:   attrs.Domain,
		Expires:  attrs.Expires,
		HttpOnly: attrs.HttpOnly,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	})
}

// ReadSigned returns the verified value of the named cookie. A missing cookie
// and one whose signature does not verify are reported the same way; err
// tells them apart for logging only.
func (m *Manager) ReadSigned(c echo.Context, name string) (string, bool, error) {
	ck, err := c.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false, nil
	}

	value, err := m.Verify(ck.Value)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (m *Manager) Delete(c echo.Context, name, domain string) {
	c.SetCookie(&http.Cookie{
		Name:    name,
		Value:   "",
		Path:    m.path,
		Domain:  domain,
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}

func (m *Manager) Sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + separator +
		base64.RawURLEncoding.EncodeToString(mac(m.secrets[0], []byte(value)))
}

func (m *Manager) Verify(signed string) (string, error) {
	encodedValue, encodedSig, ok := strings.Cut(signed, separator)
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		if hmac.Equal(sig, mac(secret, value)) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret, value []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(value)
	return h.Sum(nil)
}

func ParseSameSite(setting string) http.SameSite {
	switch setting {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
