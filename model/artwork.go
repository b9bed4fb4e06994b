package model

// Artwork is a persistent graph node keyed by its external identifier.
// The embedding is nil until the backfill pipeline has computed it.
type Artwork struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	MetaData  string    `json:"meta_data,omitempty"` // unparsed "year, medium, dimensions, location"
	Embedding []float32 `json:"embedding,omitempty"`
}

// ArtworkCreator identifies the artist attributed to an artwork.
type ArtworkCreator struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
}

// ArtworkDetail is the detail view of one artwork, built per request.
type ArtworkDetail struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	URL      string          `json:"url,omitempty"`
	MetaData string          `json:"meta_data,omitempty"`
	Artist   *ArtworkCreator `json:"artist,omitempty"`
}
