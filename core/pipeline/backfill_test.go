package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumgallery/artgraph/model"
)

type fakeEmbeddingStore struct {
	pending   []model.EmbeddingSource
	saved     map[string][]float32
	selectErr error
	saveErr   error
}

func newFakeEmbeddingStore(pending ...model.EmbeddingSource) *fakeEmbeddingStore {
	return &fakeEmbeddingStore{pending: pending, saved: map[string][]float32{}}
}

func (s *fakeEmbeddingStore) SelectMissingEmbeddings(ctx context.Context, limit int) ([]model.EmbeddingSource, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	return s.pending[:limit], nil
}

func (s *fakeEmbeddingStore) SaveEmbedding(ctx context.Context, artworkID string, embedding []float32) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[artworkID] = embedding
	for i, source := range s.pending {
		if source.ID == artworkID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func constantEmbed(vector []float32) EmbedFunc {
	return func(text string) ([]float32, error) {
		return vector, nil
	}
}

func TestNewBackfiller(t *testing.T) {
	t.Run("nil store is rejected", func(t *testing.T) {
		_, err := NewBackfiller(nil, constantEmbed([]float32{1}), 10, 1000, testLogger())
		assert.Error(t, err)
	})

	t.Run("nil embedder is rejected", func(t *testing.T) {
		_, err := NewBackfiller(newFakeEmbeddingStore(), nil, 10, 1000, testLogger())
		assert.Error(t, err)
	})
}

func TestBackfillerRun(t *testing.T) {
	t.Run("embeds every pending artwork across batches", func(t *testing.T) {
		store := newFakeEmbeddingStore(
			model.EmbeddingSource{ID: "1", Title: "Sunflowers", ArtistName: "Vincent van Gogh"},
			model.EmbeddingSource{ID: "2", Title: "Irises", ArtistName: "Vincent van Gogh"},
			model.EmbeddingSource{ID: "3", Title: "Starry Night", ArtistName: "Vincent van Gogh"},
		)
		backfiller, err := NewBackfiller(store, constantEmbed([]float32{0.1, 0.2}), 2, 1000, testLogger())
		require.NoError(t, err)

		written, err := backfiller.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, written)
		assert.Len(t, store.saved, 3)
		assert.Empty(t, store.pending)
	})

	t.Run("failed embedding skips the artwork and continues", func(t *testing.T) {
		store := newFakeEmbeddingStore(
			model.EmbeddingSource{ID: "1", Title: "broken"},
			model.EmbeddingSource{ID: "2", Title: "fine"},
		)
		embed := EmbedFunc(func(text string) ([]float32, error) {
			if strings.Contains(text, "broken") {
				return nil, errors.New("model error")
			}
			return []float32{0.5}, nil
		})
		backfiller, err := NewBackfiller(store, embed, 10, 1000, testLogger())
		require.NoError(t, err)

		written, err := backfiller.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, written)
		assert.Contains(t, store.saved, "2")
		assert.NotContains(t, store.saved, "1")
	})

	t.Run("stops when a full batch cannot be embedded", func(t *testing.T) {
		store := newFakeEmbeddingStore(model.EmbeddingSource{ID: "1"})
		backfiller, err := NewBackfiller(store, constantEmbed([]float32{1}), 10, 1000, testLogger())
		require.NoError(t, err)

		// No title, artist or metadata means no text to embed.
		written, err := backfiller.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, written)
	})

	t.Run("save errors abort the run", func(t *testing.T) {
		store := newFakeEmbeddingStore(model.EmbeddingSource{ID: "1", Title: "x"})
		store.saveErr = errors.New("store down")
		backfiller, err := NewBackfiller(store, constantEmbed([]float32{1}), 10, 1000, testLogger())
		require.NoError(t, err)

		_, err = backfiller.Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		store := newFakeEmbeddingStore(model.EmbeddingSource{ID: "1", Title: "x"})
		backfiller, err := NewBackfiller(store, constantEmbed([]float32{1}), 10, 1000, testLogger())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = backfiller.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildText(t *testing.T) {
	backfiller, err := NewBackfiller(newFakeEmbeddingStore(), constantEmbed(nil), 10, 40, testLogger())
	require.NoError(t, err)

	t.Run("joins present fields with labels", func(t *testing.T) {
		text := backfiller.buildText(model.EmbeddingSource{
			Title:      "Irises",
			ArtistName: "Vincent",
		})
		assert.Equal(t, "Title: Irises. Artist: Vincent", text)
	})

	t.Run("omits empty fields", func(t *testing.T) {
		text := backfiller.buildText(model.EmbeddingSource{MetaData: "1889, oil"})
		assert.Equal(t, "Details: 1889, oil", text)
	})

	t.Run("truncates to the limit", func(t *testing.T) {
		text := backfiller.buildText(model.EmbeddingSource{
			Title: strings.Repeat("very long title ", 20),
		})
		assert.Len(t, text, 40)
	})
}
