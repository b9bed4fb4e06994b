package model

// WikidataNotFound is the sentinel stored in an Artist's wikidata_id after
// every lookup variant has been exhausted without a hit. It marks a terminal
// negative state, distinct from the empty string (never looked up), so the
// resolver does not retry the artist on every run.
const WikidataNotFound = "NOT_FOUND"

// Artist is a persistent graph node keyed by its normalized name.
// Stub artists created during relation discovery may carry only a name
// and a wikidata_id.
type Artist struct {
	Name           string `json:"name"`
	Bio            string `json:"bio,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	Years          string `json:"years,omitempty"`
	Wikipedia      string `json:"wikipedia,omitempty"`
	School         string `json:"school,omitempty"`
	WikidataID     string `json:"wikidata_id,omitempty"`
	WikidataLabel  string `json:"wikidata_label,omitempty"`
	Image          string `json:"image,omitempty"`
	PaintingsCount int64  `json:"paintings_count,omitempty"`
}

// Resolved reports whether the artist has a usable external identifier.
func (a *Artist) Resolved() bool {
	return a.WikidataID != "" && a.WikidataID != WikidataNotFound
}

// RelatedArtist is a lightweight reference to another artist, as surfaced
// on detail pages and relation edges.
type RelatedArtist struct {
	Name       string `json:"name"`
	WikidataID string `json:"wikidata_id,omitempty"`
}

// ArtworkSummary is the per-artwork slice of an artist detail view.
type ArtworkSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Info  string `json:"info,omitempty"`
}

// ArtistDetail is the full profile view of one artist, built per request.
type ArtistDetail struct {
	Name           string           `json:"name"`
	Bio            string           `json:"bio"`
	Nationality    string           `json:"nationality"`
	Years          string           `json:"years"`
	Wikipedia      string           `json:"wikipedia"`
	School         string           `json:"school,omitempty"`
	PaintingsCount int64            `json:"paintings_count"`
	Movements      []string         `json:"movements"`
	Artworks       []ArtworkSummary `json:"artworks"`
	InfluencedBy   []RelatedArtist  `json:"influenced_by"`
	Influences     []RelatedArtist  `json:"influences"`
	Mentors        []RelatedArtist  `json:"mentors"`
	Students       []RelatedArtist  `json:"students"`
}
