// Package session resolves the per-browser search session carried in a cookie.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the cookie binding a browser to its search session.
const CookieName = "search_session_id"

type contextKey struct{}

// Resolver derives a stable session id from a request.
type Resolver struct {
	newID func() string
}

// NewResolver creates a Resolver that mints random UUIDs.
func NewResolver() *Resolver {
	return &Resolver{newID: uuid.NewString}
}

// Resolve returns the session id carried by the request cookie when it is a
// well-formed UUID, otherwise a newly minted id with hasCookie set to false.
func (r *Resolver) Resolve(req *http.Request) (hasCookie bool, sessionID string) {
	if c, err := req.Cookie(CookieName); err == nil && wellFormed(c.Value) {
		return true, c.Value
	}
	return false, r.newID()
}

// wellFormed accepts only the canonical 36-character UUID form. The id is used
// as a file name by the session log sink.
func wellFormed(v string) bool {
	if len(v) != 36 {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

// Cookie builds the cookie binding sessionID to the whole site. No expiry is
// set, so the browser keeps it for its default session lifetime.
func (r *Resolver) Cookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware resolves the session once per request, stores it in the request
// context and sets the cookie when the request did not carry a valid one.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasCookie, id := resolver.Resolve(r)
			if !hasCookie {
				http.SetCookie(w, resolver.Cookie(id))
			}
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, sessionID)
}

// FromContext returns the session id stored by Middleware, or "" if none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
