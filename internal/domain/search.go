package domain

// Entry kinds understood by the search dialog.
const (
	EntryPage = "page"
	EntryText = "text"
)

// Entry is a single UI-facing search result row.
type Entry struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// VectorChunk is one scored chunk returned by the vector store.
// Several chunks may originate from the same file.
type VectorChunk struct {
	FileID   string         `json:"file_id"`
	Score    float64        `json:"score"`
	Metadata VectorMetadata `json:"generated_metadata"`
}

// VectorMetadata is the subset of generated chunk metadata the dialog displays.
type VectorMetadata struct {
	Title     string `json:"title,omitempty"`
	Path      string `json:"path,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}
