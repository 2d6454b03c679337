// Package compare builds the side-by-side provider comparison of logged searches.
package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/V4T54L/docsearch/internal/domain"
)

// Column is one provider's slice of the log with its mean latency.
type Column struct {
	Title           string
	Provider        string
	Rows            []domain.SearchLogEvent
	AverageDuration int64
}

// View is the full comparison: the providers to choose from and two columns.
type View struct {
	Providers []string
	Left      Column
	Right     Column
}

// Providers returns the distinct providers present in rows, sorted.
func Providers(rows []domain.SearchLogEvent) []string {
	seen := make(map[string]struct{})
	var providers []string
	for _, r := range rows {
		if _, ok := seen[r.Provider]; ok {
			continue
		}
		seen[r.Provider] = struct{}{}
		providers = append(providers, r.Provider)
	}
	sort.Strings(providers)
	return providers
}

// DefaultColumns picks the initial providers: a vector-like provider on the
// left and a lexical-like one on the right, falling back to the first two found.
func DefaultColumns(providers []string) (left, right string) {
	left = findContaining(providers, "mixed")
	if left == "" && len(providers) > 0 {
		left = providers[0]
	}

	right = findContaining(providers, "algo")
	if right == "" {
		switch {
		case len(providers) > 1:
			right = providers[1]
		case len(providers) == 1:
			right = providers[0]
		}
	}
	return left, right
}

func findContaining(providers []string, substr string) string {
	for _, p := range providers {
		if strings.Contains(strings.ToLower(p), substr) {
			return p
		}
	}
	return ""
}

// NewColumn filters rows to provider and computes the average duration.
func NewColumn(title, provider string, rows []domain.SearchLogEvent) Column {
	filtered := make([]domain.SearchLogEvent, 0)
	for _, r := range rows {
		if r.Provider == provider {
			filtered = append(filtered, r)
		}
	}
	return Column{
		Title:           title,
		Provider:        provider,
		Rows:            filtered,
		AverageDuration: AverageDuration(filtered),
	}
}

// AverageDuration is the arithmetic mean of duration_ms rounded to the nearest
// integer, halves rounding up. It is 0 for no rows.
func AverageDuration(rows []domain.SearchLogEvent) int64 {
	if len(rows) == 0 {
		return 0
	}
	var sum int64
	for _, r := range rows {
		sum += r.DurationMs
	}
	return int64(math.Floor(float64(sum)/float64(len(rows)) + 0.5))
}

// Build assembles the view. A requested provider that is absent from rows is
// replaced by its default.
func Build(rows []domain.SearchLogEvent, left, right string) View {
	providers := Providers(rows)
	defLeft, defRight := DefaultColumns(providers)
	if !contains(providers, left) {
		left = defLeft
	}
	if !contains(providers, right) {
		right = defRight
	}
	return View{
		Providers: providers,
		Left:      NewColumn("Left", left, rows),
		Right:     NewColumn("Right", right, rows),
	}
}

func contains(providers []string, p string) bool {
	for _, v := range providers {
		if v == p {
			return true
		}
	}
	return false
}
