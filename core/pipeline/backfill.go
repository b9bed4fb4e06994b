package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// EmbeddingStore is the store surface the backfill pipeline needs.
type EmbeddingStore interface {
	SelectMissingEmbeddings(ctx context.Context, limit int) ([]model.EmbeddingSource, error)
	SaveEmbedding(ctx context.Context, artworkID string, embedding []float32) error
}

// Backfiller computes embeddings for artworks that do not have one yet.
type Backfiller struct {
	store     EmbeddingStore
	embed     EmbedFunc
	batchSize int
	maxChars  int
	logger    *slog.Logger
}

// NewBackfiller creates a backfill pipeline over the given store and
// embedder. batchSize bounds one store round trip; maxChars truncates the
// composed embedding text.
func NewBackfiller(store EmbeddingStore, embed EmbedFunc, batchSize, maxChars int, logger *slog.Logger) (*Backfiller, error) {
	if store == nil {
		return nil, helper.NewError("backfiller validation", fmt.Errorf("store is nil"))
	}
	if embed == nil {
		return nil, helper.NewError("backfiller validation", fmt.Errorf("embed function is nil"))
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	if maxChars <= 0 {
		maxChars = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backfiller{
		store:     store,
		embed:     embed,
		batchSize: batchSize,
		maxChars:  maxChars,
		logger:    logger,
	}, nil
}

// Run processes batches until no artwork is missing an embedding or the
// context is cancelled. An artwork that fails to embed is logged and
// skipped for this run; it stays eligible for the next one. Returns the
// number of embeddings written.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		sources, err := b.store.SelectMissingEmbeddings(ctx, b.batchSize)
		if err != nil {
			return total, helper.NewError("select embedding batch", err)
		}
		if len(sources) == 0 {
			return total, nil
		}

		written := 0
		for _, source := range sources {
			embedding, err := EmbedText(b.embed, b.buildText(source))
			if err != nil {
				b.logger.Warn("Skipping artwork, embedding failed",
					slog.String("artworkId", source.ID), slog.Any("error", err))
				continue
			}
			if len(embedding) == 0 {
				b.logger.Warn("Skipping artwork, no text to embed",
					slog.String("artworkId", source.ID))
				continue
			}

			if err := b.store.SaveEmbedding(ctx, source.ID, embedding); err != nil {
				return total, helper.NewError("save embedding", err)
			}
			written++
			total++
		}

		b.logger.Info("Embedded artwork batch",
			slog.Int("batch", len(sources)), slog.Int("written", written), slog.Int("total", total))

		// A batch where nothing could be embedded would loop forever on the
		// same rows; stop and leave them for a later run.
		if written == 0 {
			return total, nil
		}
	}
}

// buildText composes the embedding text from title, artist and metadata,
// truncated to the configured limit.
func (b *Backfiller) buildText(source model.EmbeddingSource) string {
	var parts []string
	if source.Title != "" {
		parts = append(parts, "Title: "+source.Title)
	}
	if source.ArtistName != "" {
		parts = append(parts, "Artist: "+source.ArtistName)
	}
	if source.MetaData != "" {
		parts = append(parts, "Details: "+source.MetaData)
	}

	text := strings.Join(parts, ". ")
	if len(text) > b.maxChars {
		text = text[:b.maxChars]
	}
	return text
}
