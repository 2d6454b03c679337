package api

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/V4T54L/docsearch/internal/adapter/api/handler"
	"github.com/V4T54L/docsearch/internal/adapter/api/middleware"
	"github.com/V4T54L/docsearch/internal/adapter/session"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Search  *handler.SearchHandler
	Log     *handler.LogHandler
	Logs    *handler.LogsHandler
	Compare *handler.CompareHandler
	Events  *handler.SSEBroker
}

// NewRouter creates and configures the main HTTP router for the search service.
// Only the routes that record search events carry the session cookie.
func NewRouter(logger *slog.Logger, resolver *session.Resolver, h Handlers) http.Handler {
	mux := http.NewServeMux()
	withSession := session.Middleware(resolver)

	// Search and log routes
	mux.Handle("POST /api/log", withSession(h.Log))
	mux.Handle("GET /api/search", withSession(http.HandlerFunc(h.Search.Lexical)))
	mux.Handle("GET /api/vector-store", withSession(http.HandlerFunc(h.Search.Vector)))

	// Comparison
	mux.Handle("GET /api/logs", h.Logs)
	mux.Handle("GET /logs", h.Compare)
	if h.Events != nil {
		mux.Handle("GET /api/logs/stream", h.Events)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Chain(mux,
		func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "docsearch") },
		middleware.Recover(logger),
		middleware.Logging(logger),
	)
}
