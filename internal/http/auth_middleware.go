package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/SP85691/ResearchSmithAI/internal/domain"
	"github.com/SP85691/ResearchSmithAI/internal/service/auth"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "access_token"

type authContextKey string

const contextKeyAuth authContextKey = "researchsmith-auth-user"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth resolves the session cookie to a user before invoking the
// handler. Missing cookie, bad token, and unknown subject all yield 401.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, _, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the session cookie and enriches the context.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, *domain.User, bool) {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return req.Context(), nil, false
	}
	user, err := r.auth.Authenticate(req.Context(), cookie.Value)
	if err != nil {
		r.logger.Warn("session validation failed", "error", err, "path", req.URL.Path)
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrUnauthenticated) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, "authentication failed")
		return req.Context(), nil, false
	}
	ctx := context.WithValue(req.Context(), contextKeyAuth, user)
	return ctx, user, true
}

// userFromContext extracts the authenticated user from context.
func userFromContext(ctx context.Context) (*domain.User, bool) {
	value := ctx.Value(contextKeyAuth)
	if value == nil {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
