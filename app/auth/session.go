// Package auth issues signed session cookies and resolves the calling user.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"feedgram/app/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "feedgram_session"
	DefaultTTL        = 7 * 24 * time.Hour
	issuer            = "feedgram"
)

var ErrInvalidSession = errors.New("invalid or expired session")

type SessionOptions struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Sessions signs HS256 tokens whose subject is the user id.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

func NewSessions(opts SessionOptions) (*Sessions, error) {
	if len(opts.Secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	s := &Sessions{
		secret:     []byte(opts.Secret),
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		now:        time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.cookieName == "" {
		s.cookieName = DefaultCookieName
	}
	return s, nil
}

func (s *Sessions) CookieName() string { return s.cookieName }

// Token returns a signed token for user.
func (s *Sessions) Token(user *models.User) (string, error) {
	if user == nil || user.ID <= 0 {
		return "", errors.New("cannot sign a session for an unsaved user")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.Itoa(user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and returns the user id it was issued for.
func (s *Sessions) Parse(tokenStr string) (int, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidSession, claims.Subject)
	}
	return id, nil
}

// Issue sets the session cookie for user and returns the token in it.
func (s *Sessions) Issue(w http.ResponseWriter, user *models.User) (string, error) {
	token, err := s.Token(user)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.now().Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID reads the session cookie, or a bearer token, from r.
func (s *Sessions) UserID(r *http.Request) (int, error) {
	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		return s.Parse(cookie.Value)
	}
	if header := r.Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
		return s.Parse(header[7:])
	}
	return 0, ErrInvalidSession
}
