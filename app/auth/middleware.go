package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"feedgram/app/models"

	"go.uber.org/zap"
)

type contextKey struct{}

// UserLoader resolves a session subject to a user.
type UserLoader interface {
	GetUser(id int) (*models.User, error)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*models.User)
	return user, ok && user != nil
}

// Authenticate attaches the session user, if any, to the request context.
// Requests without a valid session pass through anonymously.
func (s *Sessions) Authenticate(users UserLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.UserID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetUser(id)
			if err != nil {
				logger.Debug("session user not found", zap.Int("user_id", id), zap.Error(err))
				s.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser sends anonymous callers to the login page, or answers 401
// when the caller expects JSON.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if WantsJSON(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// LoginURL is the login page that returns to next afterwards.
func LoginURL(next string) string {
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext keeps next only when it points back into this site.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/feed"
	}
	return next
}

// WantsJSON reports whether the request is for the JSON API.
func WantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json")
}
