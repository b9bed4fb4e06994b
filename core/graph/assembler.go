package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// Bounds keep the visualization readable for prolific artists and crowded
// movements.
const (
	maxArtworks       = 20
	maxRelatedArtists = 5
)

// NeighborhoodStore is the store surface the graph assembler needs.
type NeighborhoodStore interface {
	SelectNeighborhood(ctx context.Context, artistName string) (*model.Neighborhood, error)
}

// Assembler builds the bounded visualization graph around one focal artist.
type Assembler struct {
	store  NeighborhoodStore
	logger *slog.Logger
}

// NewAssembler creates a graph assembler over the given store.
func NewAssembler(store NeighborhoodStore, logger *slog.Logger) (*Assembler, error) {
	if store == nil {
		return nil, helper.NewError("graph assembler validation", fmt.Errorf("store is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Assembler{store: store, logger: logger}, nil
}

// BuildGraph assembles the renderable graph for one artist. Returns nil
// when the artist does not exist. Node ids are namespaced by kind and
// unique within the response; every edge references nodes present in the
// same response.
func (a *Assembler) BuildGraph(ctx context.Context, artistName string) (*model.GraphData, error) {
	if strings.TrimSpace(artistName) == "" {
		return nil, nil
	}

	neighborhood, err := a.store.SelectNeighborhood(ctx, artistName)
	if err != nil {
		return nil, helper.NewError("load artist neighborhood", err)
	}
	if neighborhood == nil {
		return nil, nil
	}

	data := &model.GraphData{Nodes: []model.GraphNode{}, Edges: []model.GraphEdge{}}
	present := map[string]bool{}

	addNode := func(node model.GraphNode) bool {
		if present[node.ID] {
			return false
		}
		present[node.ID] = true
		data.Nodes = append(data.Nodes, node)
		return true
	}

	focalRaw := neighborhood.Focal.RawID()
	if focalRaw == "" {
		// A focal artist can lack every identifier only if the stored name
		// is empty; the query argument still identifies it.
		focalRaw = artistName
	}
	focalLabel := neighborhood.Focal.Label()
	if focalLabel == "" {
		focalLabel = artistName
	}
	focalID := nodeID(model.NodeKindArtist, focalRaw)
	addNode(model.GraphNode{
		ID:     focalID,
		Label:  focalLabel,
		Kind:   model.NodeKindArtist,
		Weight: model.WeightFocalArtist,
		Slug:   focalLabel,
	})

	artworks := 0
	for _, artwork := range neighborhood.Artworks {
		if artworks >= maxArtworks {
			break
		}
		raw := artwork.RawID()
		if raw == "" {
			continue
		}
		id := nodeID(model.NodeKindArtwork, raw)
		if !addNode(model.GraphNode{
			ID:     id,
			Label:  artwork.Label(),
			Kind:   model.NodeKindArtwork,
			Weight: model.WeightArtwork,
			Slug:   raw,
		}) {
			continue
		}
		artworks++
		data.Edges = append(data.Edges, model.GraphEdge{
			Source: focalID, Target: id, Type: model.RelationCreated,
		})
	}

	for _, movement := range neighborhood.Movements {
		raw := movement.RawID()
		if raw == "" {
			continue
		}
		id := nodeID(model.NodeKindMovement, raw)
		if !addNode(model.GraphNode{
			ID:     id,
			Label:  movement.Label(),
			Kind:   model.NodeKindMovement,
			Weight: model.WeightMovement,
		}) {
			continue
		}
		data.Edges = append(data.Edges, model.GraphEdge{
			Source: focalID, Target: id, Type: model.RelationBelongsTo,
		})
	}

	related := 0
	for _, pair := range neighborhood.Related {
		if related >= maxRelatedArtists {
			break
		}
		raw := pair.Artist.RawID()
		if raw == "" {
			continue
		}
		id := nodeID(model.NodeKindArtist, raw)
		if id == focalID {
			continue
		}
		if !addNode(model.GraphNode{
			ID:     id,
			Label:  pair.Artist.Label(),
			Kind:   model.NodeKindArtist,
			Weight: model.WeightRelatedArtist,
			Slug:   pair.Artist.Label(),
		}) {
			continue
		}
		related++
		data.Edges = append(data.Edges, model.GraphEdge{
			Source: id, Target: focalID, Type: model.RelationRelated,
		})
		if pair.Movement != nil {
			movementID := nodeID(model.NodeKindMovement, pair.Movement.RawID())
			if present[movementID] {
				data.Edges = append(data.Edges, model.GraphEdge{
					Source: id, Target: movementID, Type: model.RelationBelongsTo,
				})
			}
		}
	}

	a.logger.Debug("Assembled artist graph",
		slog.String("artist", artistName),
		slog.Int("nodes", len(data.Nodes)), slog.Int("edges", len(data.Edges)))

	return data, nil
}

// nodeID namespaces a raw identifier by kind so an artist and an artwork
// sharing a raw id never collide.
func nodeID(kind model.NodeKind, rawID string) string {
	return string(kind) + "-" + rawID
}
