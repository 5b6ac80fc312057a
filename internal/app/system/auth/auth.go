// internal/app/system/auth/auth.go

// Package auth decodes the caller's identity from the shared session
// cookie. Session issuance (login, third-party identity verification) lives
// in the external identity service; both services share the signing key, so
// this side only validates and reads.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const uidKey = "uid"

type ctxKey string

const currentUIDKey ctxKey = "currentUID"

// SessionManager validates session cookies and exposes the caller's uid.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session reader. The key must be
// the identity service's signing key; secure toggles the Secure cookie
// attribute for production.
func NewSessionManager(key, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if len(key) < 32 {
		return nil, errors.New("auth: session key must be at least 32 bytes")
	}
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: name, log: logger}, nil
}

// CurrentUID returns the authenticated caller's uid, if any.
func CurrentUID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(currentUIDKey).(string)
	return uid, ok && uid != ""
}

// WithUID returns a request whose context carries the uid. Exported for
// handler tests.
func WithUID(r *http.Request, uid string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUIDKey, uid))
}

// LoadSession injects the session's uid into the request context when the
// cookie is present and valid. Invalid cookies are treated as anonymous.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err == nil {
			if uid, _ := sess.Values[uidKey].(string); uid != "" {
				r = WithUID(r, uid)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects anonymous callers with a JSON 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUID(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "unauthenticated",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
