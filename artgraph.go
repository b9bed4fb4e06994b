package artgraph

import (
	"context"
	"log/slog"
	"os"

	"github.com/aurumgallery/artgraph/core/graph"
	"github.com/aurumgallery/artgraph/core/pipeline"
	"github.com/aurumgallery/artgraph/core/resolve"
	"github.com/aurumgallery/artgraph/core/retrieval"
	"github.com/aurumgallery/artgraph/database"
	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// ArtGraph provides a unified interface to the knowledge graph: hybrid
// retrieval, graph assembly, detail views and the enrichment pipelines.
type ArtGraph struct {
	Config   *helper.Config
	DB       *database.Database
	Artists  *database.ArtistsDBHandler
	Artworks *database.ArtworksDBHandler
	Search   *database.SearchDBHandler
	Console  *database.ConsoleDBHandler
	Engine   *retrieval.Engine
	Embedder pipeline.EmbedFunc

	assembler *graph.Assembler
	log       *slog.Logger
}

// New connects to the graph store, ensures the schema and initializes all
// handlers. The semantic stages stay disabled until UseDefaultEmbedder or
// SetEmbedder provides an embedding function.
func New(cfg *helper.Config) (*ArtGraph, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		return nil, helper.NewError("connect graph store", err)
	}

	if err := db.EnsureSchema(context.Background(), cfg.EmbeddingDim); err != nil {
		_ = db.Close(context.Background())
		return nil, helper.NewError("ensure graph schema", err)
	}

	artists, err := database.NewArtistsDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create artists handler", err)
	}

	artworks, err := database.NewArtworksDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create artworks handler", err)
	}

	search, err := database.NewSearchDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create search handler", err)
	}

	console, err := database.NewConsoleDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create console handler", err)
	}

	graphHandler, err := database.NewGraphDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create graph handler", err)
	}

	engine, err := retrieval.NewEngine(search, nil, logger)
	if err != nil {
		return nil, helper.NewError("create retrieval engine", err)
	}

	assembler, err := graph.NewAssembler(graphHandler, logger)
	if err != nil {
		return nil, helper.NewError("create graph assembler", err)
	}

	return &ArtGraph{
		Config:    cfg,
		DB:        db,
		Artists:   artists,
		Artworks:  artworks,
		Search:    search,
		Console:   console,
		Engine:    engine,
		assembler: assembler,
		log:       logger,
	}, nil
}

// Close shuts down the store connection.
func (a *ArtGraph) Close(ctx context.Context) error {
	return a.DB.Close(ctx)
}

// SetEmbedder installs an embedding function, enabling the semantic search
// stage and the chat-context artwork stage.
func (a *ArtGraph) SetEmbedder(embed pipeline.EmbedFunc) error {
	a.Embedder = embed
	engine, err := retrieval.NewEngine(a.Search, embed, a.log)
	if err != nil {
		return helper.NewError("create retrieval engine", err)
	}
	a.Engine = engine
	return nil
}

// UseDefaultEmbedder installs the default sentence transformer embedder.
// The model is downloaded on first use.
func (a *ArtGraph) UseDefaultEmbedder() error {
	embed, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	return a.SetEmbedder(embed)
}

// HybridSearch runs the fused keyword and semantic query.
func (a *ArtGraph) HybridSearch(ctx context.Context, query string, opts model.SearchOptions) ([]model.SearchResult, error) {
	return a.Engine.Search(ctx, query, opts)
}

// ChatContext assembles the grounding text for one chat question. Empty
// when nothing in the graph matches.
func (a *ArtGraph) ChatContext(ctx context.Context, question string) string {
	return a.Engine.ChatContext(ctx, question)
}

// ArtistGraph builds the bounded visualization graph around one artist.
// Returns nil when the artist does not exist.
func (a *ArtGraph) ArtistGraph(ctx context.Context, artistName string) (*model.GraphData, error) {
	return a.assembler.BuildGraph(ctx, artistName)
}

// ArtistDetail loads the full profile view of one artist, nil when absent.
func (a *ArtGraph) ArtistDetail(ctx context.Context, artistName string) (*model.ArtistDetail, error) {
	return a.Artists.SelectDetail(ctx, artistName)
}

// ArtworkDetail loads the detail view of one artwork, nil when absent.
func (a *ArtGraph) ArtworkDetail(ctx context.Context, artworkID string) (*model.ArtworkDetail, error) {
	return a.Artworks.SelectDetail(ctx, artworkID)
}

// RawQuery runs operator-supplied Cypher and returns flattened rows.
func (a *ArtGraph) RawQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return a.Console.RunRawQuery(ctx, query)
}

// BackfillEmbeddings embeds every artwork still missing a vector. Requires
// an installed embedder.
func (a *ArtGraph) BackfillEmbeddings(ctx context.Context) (int, error) {
	backfiller, err := pipeline.NewBackfiller(
		a.Artworks, a.Embedder, a.Config.EmbedBatchSize, a.Config.EmbedMaxChars, a.log)
	if err != nil {
		return 0, err
	}
	return backfiller.Run(ctx)
}

// ResolveEntities links unsynced artists to the external knowledge base and
// imports their influence and teacher relations.
func (a *ArtGraph) ResolveEntities(ctx context.Context) (resolve.Stats, error) {
	client, err := resolve.NewWikidataClient(
		a.Config.WikidataEndpoint, a.Config.WikidataUserAgent, a.Config.WikidataTimeout)
	if err != nil {
		return resolve.Stats{}, err
	}
	client.SetRelationLimit(a.Config.WikidataRelationLimit)

	limiter := resolve.NewLimiter(a.Config.WikidataDelay)
	resolver, err := resolve.NewResolver(a.Artists, client, limiter, a.Config.WikidataBatchSize, a.log)
	if err != nil {
		return resolve.Stats{}, err
	}
	return resolver.Run(ctx)
}

// DeduplicateArtists merges artist nodes sharing one external identifier.
// Returns the number of duplicate nodes removed.
func (a *ArtGraph) DeduplicateArtists(ctx context.Context) (int, error) {
	deduper, err := resolve.NewDeduper(a.Artists, a.log)
	if err != nil {
		return 0, err
	}
	return deduper.Run(ctx)
}

// Logger exposes the configured logger for command line tooling.
func (a *ArtGraph) Logger() *slog.Logger {
	return a.log
}
