package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/service"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
	"github.com/aussiebroadwan/kurdforest/pkg/httpx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

const sessionCookieName = "kurdforest_session"

type sessionCtxKey struct{}

// SessionFromContext returns the session loaded for this request, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*domain.Session)
	return s
}

func contextWithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionCookie writes and clears the session cookie.
type SessionCookie struct {
	Secure bool
	MaxAge time.Duration
}

func (c SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadSession resolves the session cookie, if any, and stores the session in
// the request context. Stale cookies are cleared.
func LoadSession(sessions *service.SessionService, cookie SessionCookie) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(sessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Authenticate(r.Context(), c.Value)
			if err != nil {
				if !errors.Is(err, service.ErrAuth) {
					errutil.LogError(slogx.FromContext(r.Context()), "failed to load session", err)
				}
				cookie.Clear(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := contextWithSession(r.Context(), &sess)
			ctx = httpx.ContextWithSubject(ctx, sess.UserID)
			ctx = slogx.With(ctx, "user_id", sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthenticated sends logged-in users home instead of to the
// login and registration pages.
func RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
