package usecase

import (
	"fmt"

	"github.com/V4T54L/docsearch/internal/domain"
)

const untitled = "Untitled"

// DedupByFileID keeps the first chunk of every file, preserving the order of
// first occurrences.
func DedupByFileID(chunks []domain.VectorChunk) []domain.VectorChunk {
	seen := make(map[string]struct{}, len(chunks))
	unique := make([]domain.VectorChunk, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.FileID]; ok {
			continue
		}
		seen[c.FileID] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

// FlattenEntries expands each chunk into a page entry carrying its title and a
// text entry carrying its path. Both share the chunk's source URL.
func FlattenEntries(chunks []domain.VectorChunk) []domain.Entry {
	entries := make([]domain.Entry, 0, 2*len(chunks))
	for i, c := range chunks {
		title := c.Metadata.Title
		if title == "" {
			title = untitled
		}
		entries = append(entries,
			domain.Entry{
				ID:      fmt.Sprintf("result-%d-page", i),
				URL:     c.Metadata.SourceURL,
				Type:    domain.EntryPage,
				Content: title,
			},
			domain.Entry{
				ID:      fmt.Sprintf("result-%d-text", i),
				URL:     c.Metadata.SourceURL,
				Type:    domain.EntryText,
				Content: c.Metadata.Path,
			},
		)
	}
	return entries
}
