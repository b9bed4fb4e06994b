package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aurumgallery/artgraph"
	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// Demonstrates the library against a running Neo4j instance: seed a few
// nodes, run a hybrid search, load a detail view and build the
// visualization graph. Configure the connection through the environment or
// a .env file.
func main() {
	cfg, err := helper.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ag, err := artgraph.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	ctx := context.Background()
	defer func() { _ = ag.Close(ctx) }()

	// Seed a tiny collection.
	err = ag.Artists.UpsertProfile(ctx, &model.Artist{
		Name:        "Claude Monet",
		Bio:         "French painter and a founder of impressionism.",
		Nationality: "French",
		Years:       "1840-1926",
	})
	if err != nil {
		log.Fatalf("Failed to seed artist: %v", err)
	}
	err = ag.Artists.UpsertHistoricInfo(ctx, "Claude Monet", "", "", "", "French", "Impressionism")
	if err != nil {
		log.Fatalf("Failed to seed movement: %v", err)
	}
	err = ag.Artworks.UpsertArtwork(ctx, &model.Artwork{
		ID:       "example-1",
		Title:    "Water Lilies",
		MetaData: "1906, oil on canvas",
	}, "Claude Monet")
	if err != nil {
		log.Fatalf("Failed to seed artwork: %v", err)
	}

	// Keyword search; pass Semantic: true after running the embed command
	// to add the vector stage.
	results, err := ag.HybridSearch(ctx, "monet", model.SearchOptions{})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	fmt.Printf("Found %d results:\n", len(results))
	for _, result := range results {
		fmt.Printf("  [%s] %s (%s)\n", result.Kind, result.Title, result.Subtitle)
	}

	// Detail view.
	detail, err := ag.ArtistDetail(ctx, "Claude Monet")
	if err != nil {
		log.Fatalf("Detail failed: %v", err)
	}
	fmt.Printf("\n%s, %s\nMovements: %v\nArtworks: %d\n",
		detail.Name, detail.Years, detail.Movements, len(detail.Artworks))

	// Visualization graph.
	graphData, err := ag.ArtistGraph(ctx, "Claude Monet")
	if err != nil {
		log.Fatalf("Graph failed: %v", err)
	}
	fmt.Printf("\nGraph: %d nodes, %d edges\n", len(graphData.Nodes), len(graphData.Edges))
	for _, node := range graphData.Nodes {
		fmt.Printf("  node %s (weight %d)\n", node.ID, node.Weight)
	}
	for _, edge := range graphData.Edges {
		fmt.Printf("  edge %s -%s-> %s\n", edge.Source, edge.Type, edge.Target)
	}
}
