package database

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// ArtworksDBHandlerFunctions defines the interface for Artwork node operations.
type ArtworksDBHandlerFunctions interface {
	UpsertArtwork(ctx context.Context, artwork *model.Artwork, artistName string) error
	SelectMissingEmbeddings(ctx context.Context, limit int) ([]model.EmbeddingSource, error)
	SaveEmbedding(ctx context.Context, artworkID string, embedding []float32) error
	SelectDetail(ctx context.Context, artworkID string) (*model.ArtworkDetail, error)
}

// ArtworksDBHandler handles Artwork node operations against the graph store.
type ArtworksDBHandler struct {
	db *Database
}

// NewArtworksDBHandler creates a new artworks handler.
func NewArtworksDBHandler(db *Database) (*ArtworksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	db.Logger.Info("Initialized ArtworksDBHandler")

	return &ArtworksDBHandler{db: db}, nil
}

// UpsertArtwork merges an artwork by its external id and connects it to its
// creating artist, which is merged by normalized name so works arriving
// before the biography datasets still attach correctly.
func (h *ArtworksDBHandler) UpsertArtwork(ctx context.Context, artwork *model.Artwork, artistName string) error {
	if artwork == nil || artwork.ID == "" {
		return helper.NewError("upsert artwork", fmt.Errorf("artwork id is empty"))
	}
	if artistName == "" {
		return helper.NewError("upsert artwork", fmt.Errorf("artist name is empty"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (w:Artwork {id: $id})
		SET w.title = $title,
		    w.url = $url,
		    w.meta_data = $metaData
		MERGE (a:Artist {name: $artistName})
		MERGE (a)-[:CREATED]->(w)
	`, map[string]any{
		"id":         artwork.ID,
		"title":      artwork.Title,
		"url":        artwork.URL,
		"metaData":   artwork.MetaData,
		"artistName": artistName,
	})
	if err != nil {
		return helper.NewError("upsert artwork", err)
	}

	return nil
}

// SelectMissingEmbeddings pages artworks without an embedding, joined to
// their creator so the embedding text can name the artist.
func (h *ArtworksDBHandler) SelectMissingEmbeddings(ctx context.Context, limit int) ([]model.EmbeddingSource, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (w:Artwork)
		WHERE w.embedding IS NULL
		OPTIONAL MATCH (a:Artist)-[:CREATED]->(w)
		RETURN toString(w.id) AS id, w.title AS title,
		       w.meta_data AS metaData, a.name AS artistName
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, helper.NewError("select missing embeddings", err)
	}

	var sources []model.EmbeddingSource
	for result.Next(ctx) {
		record := result.Record()
		id, _ := record.Get("id")
		title, _ := record.Get("title")
		metaData, _ := record.Get("metaData")
		artistName, _ := record.Get("artistName")

		if asString(id) == "" {
			continue
		}
		sources = append(sources, model.EmbeddingSource{
			ID:         asString(id),
			Title:      asString(title),
			MetaData:   asString(metaData),
			ArtistName: asString(artistName),
		})
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("select missing embeddings rows", err)
	}

	return sources, nil
}

// SaveEmbedding stores the vector on the artwork node, making it visible to
// the vector index.
func (h *ArtworksDBHandler) SaveEmbedding(ctx context.Context, artworkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return helper.NewError("save embedding", fmt.Errorf("embedding is empty"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (w:Artwork {id: $id})
		SET w.embedding = $embedding
	`, map[string]any{
		"id":        artworkID,
		"embedding": vectorParam(embedding),
	})
	if err != nil {
		return helper.NewError("save embedding", err)
	}

	return nil
}

// SelectDetail loads one artwork with its attributed creator. Returns nil
// when the artwork does not exist.
func (h *ArtworksDBHandler) SelectDetail(ctx context.Context, artworkID string) (*model.ArtworkDetail, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (w:Artwork {id: $id})
		OPTIONAL MATCH (a:Artist)-[:CREATED]->(w)
		RETURN w, a.name AS artistName, a.nationality AS artistNationality
	`

	result, err := session.Run(ctx, query, map[string]any{"id": artworkID})
	if err != nil {
		return nil, helper.NewError("select artwork detail", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, nil
	}

	nodeRaw, _ := record.Get("w")
	node, ok := nodeRaw.(neo4j.Node)
	if !ok {
		return nil, helper.NewError("select artwork detail", fmt.Errorf("unexpected row shape for artwork node"))
	}

	detail := &model.ArtworkDetail{
		ID:       artworkID,
		Title:    nodeProp(node, "title"),
		URL:      nodeProp(node, "url"),
		MetaData: nodeProp(node, "meta_data"),
	}

	artistName, _ := record.Get("artistName")
	if name := asString(artistName); name != "" {
		nationality, _ := record.Get("artistNationality")
		detail.Artist = &model.ArtworkCreator{
			Name:        name,
			Nationality: asString(nationality),
		}
	}

	return detail, nil
}
