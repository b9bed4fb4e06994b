package database

import (
	"context"
	"fmt"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// VectorIndexName is the artwork embedding index queried by the semantic
// retrieval stages.
const VectorIndexName = "artwork_embeddings"

// SearchDBHandlerFunctions defines the interface for retrieval queries.
type SearchDBHandlerFunctions interface {
	SelectKeywordMatches(ctx context.Context, keyword string, limit int) ([]model.SearchResult, error)
	SelectSemanticMatches(ctx context.Context, embedding []float32, k int) ([]model.SemanticMatch, error)
	SelectContextArtworks(ctx context.Context, embedding []float32, k int) ([]model.ArtworkContext, error)
	SelectContextArtists(ctx context.Context, keyword string, limit int) ([]model.ArtistContext, error)
}

// SearchDBHandler runs the retrieval queries against the graph store.
type SearchDBHandler struct {
	db *Database
}

// NewSearchDBHandler creates a new search handler.
func NewSearchDBHandler(db *Database) (*SearchDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	db.Logger.Info("Initialized SearchDBHandler")

	return &SearchDBHandler{db: db}, nil
}

// SelectKeywordMatches runs the case-insensitive substring match over
// artist names and artwork titles as one bounded union. Both branches
// share the uniform result row shape; the artwork branch joins the creator
// for subtitle composition.
func (h *SearchDBHandler) SelectKeywordMatches(ctx context.Context, keyword string, limit int) ([]model.SearchResult, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		CALL {
			MATCH (a:Artist)
			WHERE toLower(a.name) CONTAINS toLower($keyword)
			RETURN 'artist' AS kind, a.name AS title,
			       coalesce(a.nationality, 'Artist') AS subtitle,
			       a.name AS linkKey
			UNION
			MATCH (a:Artist)-[:CREATED]->(w:Artwork)
			WHERE toLower(w.title) CONTAINS toLower($keyword)
			RETURN 'artwork' AS kind, w.title AS title,
			       'Artwork by ' + a.name AS subtitle,
			       toString(w.id) AS linkKey
		}
		RETURN kind, title, subtitle, linkKey
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]any{
		"keyword": keyword,
		"limit":   limit,
	})
	if err != nil {
		return nil, helper.NewError("keyword search", err)
	}

	var matches []model.SearchResult
	for result.Next(ctx) {
		record := result.Record()
		kind, _ := record.Get("kind")
		title, _ := record.Get("title")
		subtitle, _ := record.Get("subtitle")
		linkKey, _ := record.Get("linkKey")

		match := model.SearchResult{
			Kind:     model.ResultKind(asString(kind)),
			Title:    asString(title),
			Subtitle: asString(subtitle),
			LinkKey:  asString(linkKey),
		}
		if match.LinkKey == "" {
			match.LinkKey = match.Title
		}
		matches = append(matches, match)
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("keyword search rows", err)
	}

	return matches, nil
}

// SelectSemanticMatches queries the vector index for the nearest artwork
// embeddings, left-joined to the creating artist for attribution.
func (h *SearchDBHandler) SelectSemanticMatches(ctx context.Context, embedding []float32, k int) ([]model.SemanticMatch, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
		OPTIONAL MATCH (creator:Artist)-[:CREATED]->(node)
		RETURN toString(node.id) AS id, node.title AS title,
		       elementId(node) AS internalId,
		       creator.name AS artistName, score
	`

	result, err := session.Run(ctx, query, map[string]any{
		"index":     VectorIndexName,
		"k":         k,
		"embedding": vectorParam(embedding),
	})
	if err != nil {
		return nil, helper.NewError("vector search", err)
	}

	var matches []model.SemanticMatch
	for result.Next(ctx) {
		record := result.Record()
		id, _ := record.Get("id")
		title, _ := record.Get("title")
		internalID, _ := record.Get("internalId")
		artistName, _ := record.Get("artistName")
		score, _ := record.Get("score")

		artworkID := asString(id)
		if artworkID == "" {
			artworkID = asString(title)
		}
		if artworkID == "" {
			artworkID = asString(internalID)
		}
		if artworkID == "" {
			continue
		}

		matches = append(matches, model.SemanticMatch{
			ArtworkID:  artworkID,
			Title:      asString(title),
			ArtistName: asString(artistName),
			Score:      asFloat64(score),
		})
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("vector search rows", err)
	}

	return matches, nil
}

// SelectContextArtworks returns the nearest artworks with their creator and
// metadata, feeding the chat-context artwork blocks. Artworks without an
// attributed creator are excluded here; context lines name the artist.
func (h *SearchDBHandler) SelectContextArtworks(ctx context.Context, embedding []float32, k int) ([]model.ArtworkContext, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
		MATCH (creator:Artist)-[:CREATED]->(node)
		RETURN node.title AS title, creator.name AS artistName,
		       node.meta_data AS metaData, score
	`

	result, err := session.Run(ctx, query, map[string]any{
		"index":     VectorIndexName,
		"k":         k,
		"embedding": vectorParam(embedding),
	})
	if err != nil {
		return nil, helper.NewError("context artwork search", err)
	}

	var rows []model.ArtworkContext
	for result.Next(ctx) {
		record := result.Record()
		title, _ := record.Get("title")
		artistName, _ := record.Get("artistName")
		metaData, _ := record.Get("metaData")
		score, _ := record.Get("score")

		rows = append(rows, model.ArtworkContext{
			Title:      asString(title),
			ArtistName: asString(artistName),
			MetaData:   asString(metaData),
			Score:      asFloat64(score),
		})
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("context artwork rows", err)
	}

	return rows, nil
}

// SelectContextArtists returns keyword-matched artists with their movements,
// feeding the chat-context artist blocks. Matching covers name and bio so a
// question mentioning a movement or technique still finds its artists.
func (h *SearchDBHandler) SelectContextArtists(ctx context.Context, keyword string, limit int) ([]model.ArtistContext, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Artist)
		WHERE toLower(a.name) CONTAINS toLower($keyword)
		   OR toLower(coalesce(a.bio, '')) CONTAINS toLower($keyword)
		OPTIONAL MATCH (a)-[:BELONGS_TO]->(m:Movement)
		RETURN a.name AS name, a.bio AS bio, a.nationality AS nationality,
		       collect(m.name) AS movements
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]any{
		"keyword": keyword,
		"limit":   limit,
	})
	if err != nil {
		return nil, helper.NewError("context artist search", err)
	}

	var rows []model.ArtistContext
	for result.Next(ctx) {
		record := result.Record()
		name, _ := record.Get("name")
		bio, _ := record.Get("bio")
		nationality, _ := record.Get("nationality")
		movementsRaw, _ := record.Get("movements")

		var movements []string
		if list, ok := movementsRaw.([]any); ok {
			for _, m := range list {
				if s := asString(m); s != "" {
					movements = append(movements, s)
				}
			}
		}

		rows = append(rows, model.ArtistContext{
			Name:        asString(name),
			Bio:         asString(bio),
			Nationality: asString(nationality),
			Movements:   movements,
		})
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("context artist rows", err)
	}

	return rows, nil
}
