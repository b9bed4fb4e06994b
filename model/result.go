package model

// ResultKind classifies a search result or context item.
type ResultKind string

const (
	ResultKindArtist  ResultKind = "artist"
	ResultKindArtwork ResultKind = "artwork"
)

// SortOrder optionally reorders fused search results lexicographically,
// overriding the default relevance order.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchOptions configures a hybrid search.
type SearchOptions struct {
	// Semantic enables the vector stage on top of the keyword stage.
	Semantic bool `json:"semantic"`
	// Filter narrows the fused list to one result kind when set.
	Filter ResultKind `json:"filter,omitempty"`
	// Sort reorders results by title when set.
	Sort SortOrder `json:"sort,omitempty"`
}

// SearchResult is one fused retrieval hit. It is constructed per query and
// never persisted. LinkKey is the routing parameter for the matched entity:
// the artist name or the artwork id.
type SearchResult struct {
	Kind     ResultKind `json:"kind"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	LinkKey  string     `json:"link_key"`
	Score    *float64   `json:"score,omitempty"`
}

// DedupKey is the composite identity used during result fusion; the first
// occurrence of a key wins.
func (r SearchResult) DedupKey() string {
	return string(r.Kind) + "-" + r.LinkKey
}

// ContextItem is one block of chat-grounding context before formatting.
type ContextItem struct {
	Kind    ResultKind `json:"kind"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Score   float64    `json:"score"`
}

// SemanticMatch is a typed row from the vector index lookup, left-joined to
// the creating artist. ArtistName is empty when no creator is attributed.
type SemanticMatch struct {
	ArtworkID  string
	Title      string
	ArtistName string
	Score      float64
}

// ArtworkContext is a typed row feeding one artwork chat-context block.
type ArtworkContext struct {
	Title      string
	ArtistName string
	MetaData   string
	Score      float64
}

// ArtistContext is a typed row feeding one artist chat-context block.
type ArtistContext struct {
	Name        string
	Bio         string
	Nationality string
	Movements   []string
}

// EmbeddingSource is a typed row for one artwork awaiting an embedding.
type EmbeddingSource struct {
	ID         string
	Title      string
	MetaData   string
	ArtistName string
}
