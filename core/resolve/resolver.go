package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// EntityAPI is the external knowledge base surface the resolver needs.
type EntityAPI interface {
	SearchEntity(ctx context.Context, name string) (*WikidataMatch, error)
	FetchRelations(ctx context.Context, wikidataID string) ([]Relation, error)
	FetchImage(ctx context.Context, wikidataID string) (string, error)
}

// ResolverStore is the store surface the resolver needs.
type ResolverStore interface {
	SelectArtistsNeedingSync(ctx context.Context, limit int) ([]model.Artist, error)
	SetWikidataMatch(ctx context.Context, name, wikidataID, label string) error
	SetWikidataNotFound(ctx context.Context, name string) error
	SetImage(ctx context.Context, name, url string) error
	MarkSynced(ctx context.Context, name string) error
	EnsureStubArtist(ctx context.Context, wikidataID, label, mergeName string) error
	MergeRelation(ctx context.Context, sourceWikidataID, targetWikidataID string, rel model.RelationType) error
}

// Stats summarizes one resolver run.
type Stats struct {
	Processed int
	Resolved  int
	NotFound  int
	Failed    int
}

// Resolver links artists to their external knowledge base entities and
// imports influence and teacher relations. A failing artist never aborts
// the run; the store keeps it eligible for the next one.
type Resolver struct {
	store     ResolverStore
	api       EntityAPI
	limiter   *Limiter
	batchSize int
	logger    *slog.Logger
}

// NewResolver creates a resolver over the given store and entity API.
func NewResolver(store ResolverStore, api EntityAPI, limiter *Limiter, batchSize int, logger *slog.Logger) (*Resolver, error) {
	if store == nil {
		return nil, helper.NewError("resolver validation", fmt.Errorf("store is nil"))
	}
	if api == nil {
		return nil, helper.NewError("resolver validation", fmt.Errorf("entity api is nil"))
	}
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		store:     store,
		api:       api,
		limiter:   limiter,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Run processes batches of unsynced artists until none remain or the
// context is cancelled. Every artist ends the run either resolved and
// marked synced, carrying the not-found sentinel, or logged as failed and
// left for the next run.
func (r *Resolver) Run(ctx context.Context) (Stats, error) {
	runID := uuid.New().String()
	logger := r.logger.With(slog.String("runId", runID))
	logger.Info("Starting entity resolution run")

	stats := Stats{}
	attempted := map[string]bool{}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch, err := r.store.SelectArtistsNeedingSync(ctx, r.batchSize)
		if err != nil {
			return stats, helper.NewError("select resolution batch", err)
		}

		// Artists that failed earlier this run come back on the next page;
		// seeing only known names means nothing new is left.
		fresh := batch[:0]
		for _, artist := range batch {
			if !attempted[artist.Name] {
				fresh = append(fresh, artist)
			}
		}
		if len(fresh) == 0 {
			break
		}

		for _, artist := range fresh {
			attempted[artist.Name] = true
			stats.Processed++

			outcome, err := r.resolveArtist(ctx, logger, artist)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failed++
				logger.Warn("Artist resolution failed",
					slog.String("artist", artist.Name), slog.Any("error", err))
				continue
			}
			switch outcome {
			case outcomeResolved:
				stats.Resolved++
			case outcomeNotFound:
				stats.NotFound++
			}
		}
	}

	logger.Info("Finished entity resolution run",
		slog.Int("processed", stats.Processed), slog.Int("resolved", stats.Resolved),
		slog.Int("notFound", stats.NotFound), slog.Int("failed", stats.Failed))

	return stats, nil
}

type outcome int

const (
	outcomeResolved outcome = iota
	outcomeNotFound
)

// resolveArtist takes one artist through lookup, image and relation import,
// finishing with the sync marker. Artists arriving with an identifier from
// an earlier partial run skip the lookup.
func (r *Resolver) resolveArtist(ctx context.Context, logger *slog.Logger, artist model.Artist) (outcome, error) {
	if !artist.Resolved() {
		match, err := r.lookup(ctx, artist.Name)
		if err != nil {
			return 0, err
		}
		if match == nil {
			if err := r.store.SetWikidataNotFound(ctx, artist.Name); err != nil {
				return 0, err
			}
			logger.Debug("No entity found", slog.String("artist", artist.Name))
			return outcomeNotFound, nil
		}

		if err := r.store.SetWikidataMatch(ctx, artist.Name, match.ID, match.Label); err != nil {
			return 0, err
		}
		artist.WikidataID = match.ID
		logger.Debug("Matched entity",
			slog.String("artist", artist.Name), slog.String("wikidataId", match.ID))
	}

	if artist.Image == "" {
		if err := r.limiter.Wait(ctx); err != nil {
			return 0, err
		}
		image, err := r.api.FetchImage(ctx, artist.WikidataID)
		if err != nil {
			return 0, err
		}
		if image != "" {
			if err := r.store.SetImage(ctx, artist.Name, image); err != nil {
				return 0, err
			}
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	relations, err := r.api.FetchRelations(ctx, artist.WikidataID)
	if err != nil {
		return 0, err
	}
	for _, relation := range relations {
		mergeName := model.NormalizeName(relation.TargetLabel)
		if err := r.store.EnsureStubArtist(ctx, relation.TargetID, relation.TargetLabel, mergeName); err != nil {
			return 0, err
		}
		if err := r.store.MergeRelation(ctx, artist.WikidataID, relation.TargetID, relation.Type); err != nil {
			return 0, err
		}
	}

	if err := r.store.MarkSynced(ctx, artist.Name); err != nil {
		return 0, err
	}
	return outcomeResolved, nil
}

// lookup tries each name variant in order and returns the first hit, or nil
// when every variant misses.
func (r *Resolver) lookup(ctx context.Context, name string) (*WikidataMatch, error) {
	for _, variant := range model.NameVariants(name) {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		match, err := r.api.SearchEntity(ctx, variant)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}
	return nil, nil
}
