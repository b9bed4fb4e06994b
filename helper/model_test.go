package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeModelDir(t *testing.T, sanitized string) string {
	t.Helper()
	path := filepath.Join("./models", sanitized)
	require.NoError(t, os.MkdirAll(path, 0750))
	t.Cleanup(func() { os.RemoveAll(path) })
	return path
}

func TestPrepareModel(t *testing.T) {
	t.Run("existing model is returned without a download", func(t *testing.T) {
		path := makeModelDir(t, "gallery_embedding-model")

		got, err := PrepareModel("gallery/embedding-model", "onnx/model.onnx")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("slash in the model name is sanitized", func(t *testing.T) {
		path := makeModelDir(t, "sentence-transformers_all-MiniLM-L6-v2")

		got, err := PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("plain model name maps straight to its directory", func(t *testing.T) {
		path := makeModelDir(t, "plain-model")

		got, err := PrepareModel("plain-model", "")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("empty onnx path still resolves an existing model", func(t *testing.T) {
		path := makeModelDir(t, "gallery_no-onnx")

		got, err := PrepareModel("gallery/no-onnx", "")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("missing model triggers a download attempt", func(t *testing.T) {
		modelName := "sentence-transformers/all-MiniLM-L6-v2"
		os.RemoveAll(filepath.Join("./models", "sentence-transformers_all-MiniLM-L6-v2"))

		// The download needs network and disk, so accept either outcome
		// and only assert the shape of each.
		path, err := PrepareModel(modelName, "onnx/model.onnx")
		if err != nil {
			assert.Contains(t, err.Error(), "failed to")
		} else {
			assert.DirExists(t, path)
			os.RemoveAll(path)
		}
	})
}
