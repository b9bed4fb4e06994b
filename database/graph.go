package database

import (
	"context"
	"fmt"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// GraphDBHandlerFunctions defines the interface for neighborhood traversal.
type GraphDBHandlerFunctions interface {
	SelectNeighborhood(ctx context.Context, artistName string) (*model.Neighborhood, error)
}

// GraphDBHandler loads the raw visualization neighborhood around one artist.
type GraphDBHandler struct {
	db *Database
}

// NewGraphDBHandler creates a new graph handler.
func NewGraphDBHandler(db *Database) (*GraphDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	db.Logger.Info("Initialized GraphDBHandler")

	return &GraphDBHandler{db: db}, nil
}

// SelectNeighborhood collects the focal artist's artworks, movements and
// movement co-members in one round trip. Returns nil when the artist does
// not exist; bounding and deduplication happen in the assembler.
func (h *GraphDBHandler) SelectNeighborhood(ctx context.Context, artistName string) (*model.Neighborhood, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Artist {name: $name})
		OPTIONAL MATCH (a)-[:CREATED]->(w:Artwork)
		OPTIONAL MATCH (a)-[:BELONGS_TO]->(m:Movement)
		OPTIONAL MATCH (a)-[:BELONGS_TO]->(shared:Movement)<-[:BELONGS_TO]-(other:Artist)
		WHERE other <> a
		RETURN a.wikidata_id AS focalExternalId, a.name AS focalName,
		       elementId(a) AS focalInternalId,
		       collect(DISTINCT {id: toString(w.id), title: w.title, internalId: elementId(w)}) AS artworks,
		       collect(DISTINCT m.name) AS movements,
		       collect(DISTINCT {
		         externalId: other.wikidata_id,
		         name: other.name,
		         internalId: elementId(other),
		         movement: shared.name
		       }) AS related
	`

	result, err := session.Run(ctx, query, map[string]any{"name": artistName})
	if err != nil {
		return nil, helper.NewError("select neighborhood", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, nil
	}

	focalExternalID, _ := record.Get("focalExternalId")
	focalName, _ := record.Get("focalName")
	focalInternalID, _ := record.Get("focalInternalId")

	neighborhood := &model.Neighborhood{
		Focal: model.NodeRef{
			ExternalID: asString(focalExternalID),
			Name:       asString(focalName),
			InternalID: asString(focalInternalID),
		},
	}

	artworksRaw, _ := record.Get("artworks")
	if list, ok := artworksRaw.([]any); ok {
		for _, item := range list {
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ref := model.NodeRef{
				ExternalID: asString(row["id"]),
				Name:       asString(row["title"]),
				InternalID: asString(row["internalId"]),
			}
			// OPTIONAL MATCH with no artwork collects one all-null entry.
			if ref.RawID() == "" {
				continue
			}
			neighborhood.Artworks = append(neighborhood.Artworks, ref)
		}
	}

	movementsRaw, _ := record.Get("movements")
	if list, ok := movementsRaw.([]any); ok {
		for _, item := range list {
			if name := asString(item); name != "" {
				neighborhood.Movements = append(neighborhood.Movements, model.NodeRef{Name: name})
			}
		}
	}

	relatedRaw, _ := record.Get("related")
	if list, ok := relatedRaw.([]any); ok {
		for _, item := range list {
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			pair := model.RelatedPair{
				Artist: model.NodeRef{
					ExternalID: asString(row["externalId"]),
					Name:       asString(row["name"]),
					InternalID: asString(row["internalId"]),
				},
			}
			if pair.Artist.RawID() == "" {
				continue
			}
			if movement := asString(row["movement"]); movement != "" {
				pair.Movement = &model.NodeRef{Name: movement}
			}
			neighborhood.Related = append(neighborhood.Related, pair)
		}
	}

	return neighborhood, nil
}
