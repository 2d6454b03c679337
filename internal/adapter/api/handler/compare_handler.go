package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/docsearch/internal/compare"
	"github.com/V4T54L/docsearch/internal/usecase"
)

//go:embed templates/compare.html
var templateFS embed.FS

// comparePageRows is how many recent events the comparison page loads.
const comparePageRows = 500

type columnData struct {
	Column     compare.Column
	Providers  []string
	Param      string
	Other      string
	OtherParam string
}

type comparePage struct {
	View  compare.View
	Error string
}

var compareTemplate = template.Must(template.New("compare.html").Funcs(template.FuncMap{
	"column": func(c compare.Column, providers []string, param, other, otherParam string) columnData {
		return columnData{Column: c, Providers: providers, Param: param, Other: other, OtherParam: otherParam}
	},
}).ParseFS(templateFS, "templates/compare.html"))

// CompareHandler renders GET /logs, two provider columns side by side.
// ?left= and ?right= choose each column's provider.
type CompareHandler struct {
	query  *usecase.LogsQuery
	logger *slog.Logger
}

// NewCompareHandler creates a new CompareHandler.
func NewCompareHandler(query *usecase.LogsQuery, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		query:  query,
		logger: logger.With("component", "compare_handler"),
	}
}

// ServeHTTP loads the recent events once and renders the page.
func (h *CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var page comparePage
	rows, err := h.query.List(r.Context(), "", strconv.Itoa(comparePageRows))
	if err != nil {
		h.logger.Error("failed to load logs for comparison", "error", err)
		page.Error = errorMessage(err)
	} else {
		params := r.URL.Query()
		page.View = compare.Build(rows, params.Get("left"), params.Get("right"))
	}

	var buf bytes.Buffer
	if err := compareTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("failed to render comparison page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
