package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver()
	existing := uuid.NewString()

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantCookie bool
		wantID     string
	}{
		{name: "no cookie", wantCookie: false},
		{name: "valid cookie", cookie: &http.Cookie{Name: CookieName, Value: existing}, wantCookie: true, wantID: existing},
		{name: "malformed cookie", cookie: &http.Cookie{Name: CookieName, Value: "../../etc/passwd"}, wantCookie: false},
		{name: "other cookie only", cookie: &http.Cookie{Name: "theme", Value: existing}, wantCookie: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			hasCookie, id := resolver.Resolve(req)
			if hasCookie != tt.wantCookie {
				t.Errorf("hasCookie = %v, want %v", hasCookie, tt.wantCookie)
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("session id %q is not a UUID: %v", id, err)
			}
			if tt.wantID != "" && id != tt.wantID {
				t.Errorf("session id = %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestResolve_MintsUniqueIDs(t *testing.T) {
	resolver := NewResolver()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		_, id := resolver.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id minted: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestMiddleware(t *testing.T) {
	var gotID string
	handler := Middleware(NewResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("sets exactly one cookie for a new session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected 1 cookie, got %d", len(cookies))
		}
		c := cookies[0]
		if c.Name != CookieName || c.Value != gotID {
			t.Errorf("cookie %s=%s does not match session %s", c.Name, c.Value, gotID)
		}
		if c.Path != "/" {
			t.Errorf("expected path /, got %q", c.Path)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("expected SameSite=Lax, got %v", c.SameSite)
		}
		if c.MaxAge != 0 || !c.Expires.IsZero() {
			t.Error("expected no explicit expiry")
		}
	})

	t.Run("reuses a valid cookie without setting a new one", func(t *testing.T) {
		existing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: existing})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if len(rec.Result().Cookies()) != 0 {
			t.Error("expected no Set-Cookie header")
		}
		if gotID != existing {
			t.Errorf("session id = %q, want %q", gotID, existing)
		}
	})
}
