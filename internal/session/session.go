// Package session issues and validates the signed session cookie that carries
// the logged-in username between requests.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "vouch/pkg/domain-errors"
)

// CookieName is the session cookie set after a successful login.
const CookieName = "vouch_session"

const issuer = "vouch"

// ErrNoSession is returned when the request carries no session cookie.
var ErrNoSession = dErrors.New(dErrors.CodeUnauthorized, "not logged in")

// ErrInvalidSession is returned for expired, tampered or otherwise
// unverifiable session tokens.
var ErrInvalidSession = dErrors.New(dErrors.CodeUnauthorized, "session is invalid or expired")

// Claims are the session token claims.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and validates session tokens and maps them onto cookies.
type Manager struct {
	signingKey []byte
	timeout    time.Duration
	secure     bool
}

// New constructs a session manager. The signing key must be non-empty; the
// timeout bounds how long an issued session stays valid.
func New(signingKey string, timeout time.Duration, secure bool) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("session signing key is required")
	}
	if timeout <= 0 {
		return nil, errors.New("session timeout must be positive")
	}
	return &Manager{
		signingKey: []byte(signingKey),
		timeout:    timeout,
		secure:     secure,
	}, nil
}

// Issue signs a session token for the username, valid from now for the
// configured timeout.
func (m *Manager) Issue(username string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning the username it
// was issued for.
func (m *Manager) Validate(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Username == "" {
		return "", ErrInvalidSession
	}
	return claims.Username, nil
}

// SetCookie writes the session cookie for the username onto the response.
func (m *Manager) SetCookie(w http.ResponseWriter, username string, now time.Time) error {
	token, err := m.Issue(username, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.timeout.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ClearCookie expires the session cookie on the response.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// FromRequest extracts and validates the session cookie, returning the
// logged-in username.
func (m *Manager) FromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNoSession
	}
	return m.Validate(cookie.Value)
}
