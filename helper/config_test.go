package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults apply when environment is empty", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "neo4j", cfg.Neo4jUser)
		assert.Equal(t, 384, cfg.EmbeddingDim)
		assert.Equal(t, "https://query.wikidata.org/sparql", cfg.WikidataEndpoint)
		assert.Equal(t, 1200*time.Millisecond, cfg.WikidataDelay)
		assert.Equal(t, 5, cfg.WikidataRelationLimit)
		assert.NotEmpty(t, cfg.WikidataUserAgent, "external calls must carry a client identifier")
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		t.Setenv("NEO4J_URI", "bolt://graph:7687")
		t.Setenv("WIKIDATA_DELAY", "50ms")
		t.Setenv("WIKIDATA_BATCH", "3")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "bolt://graph:7687", cfg.Neo4jURI)
		assert.Equal(t, 50*time.Millisecond, cfg.WikidataDelay)
		assert.Equal(t, 3, cfg.WikidataBatchSize)
	})
}
