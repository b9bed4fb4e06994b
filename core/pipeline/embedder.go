package pipeline

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"

	"github.com/aurumgallery/artgraph/helper"
)

// EmbedFunc turns a text into its embedding vector. Implementations must be
// safe for concurrent use; the retrieval engine and the backfill pipeline
// share one function value.
type EmbedFunc func(text string) ([]float32, error)

// DefaultModelName is the sentence transformer backing the default embedder.
// It produces 384-dimensional vectors, matching the store's vector index.
const DefaultModelName = "sentence-transformers/all-MiniLM-L6-v2"

var (
	defaultEmbedOnce sync.Once
	defaultEmbedFunc EmbedFunc
	defaultEmbedErr  error
)

// DefaultEmbedder returns the process-wide embedder backed by the default
// sentence transformer. The model is downloaded and loaded on first use and
// then shared; repeated calls return the same function.
func DefaultEmbedder() (EmbedFunc, error) {
	defaultEmbedOnce.Do(func() {
		defaultEmbedFunc, defaultEmbedErr = newHugotEmbedder(DefaultModelName)
	})
	return defaultEmbedFunc, defaultEmbedErr
}

func newHugotEmbedder(modelName string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, helper.NewError("prepare embedding model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create embedding session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "artwork-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewError("create embedding pipeline",
				fmt.Errorf("%w (cleanup error: %v)", err, destroyErr))
		}
		return nil, helper.NewError("create embedding pipeline", err)
	}

	var mu sync.Mutex
	return func(text string) ([]float32, error) {
		mu.Lock()
		defer mu.Unlock()

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, helper.NewError("generate embedding", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, helper.NewError("generate embedding", fmt.Errorf("no embedding generated"))
		}
		return normalize(result.Embeddings[0]), nil
	}, nil
}

// EmbedText embeds one text after trimming it. Whitespace-only input yields
// a nil vector without invoking the model.
func EmbedText(embed EmbedFunc, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	return embed(trimmed)
}

// normalize scales the vector to unit length so cosine similarity reduces
// to a dot product. Zero vectors pass through unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	length := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / length)
	}
	return out
}
