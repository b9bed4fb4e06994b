package helper

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds everything the core reads from the environment. Executables
// call LoadConfig which also picks up a .env file when present; library
// consumers may fill the struct directly.
type Config struct {
	Neo4jURI      string        `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	Neo4jUser     string        `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword string        `env:"NEO4J_PASSWORD" envDefault:"password"`
	Neo4jDatabase string        `env:"NEO4J_DATABASE" envDefault:""`
	Neo4jTimeout  time.Duration `env:"NEO4J_TIMEOUT" envDefault:"10s"`
	Neo4jMaxPool  int           `env:"NEO4J_MAX_POOL_SIZE" envDefault:"50"`

	EmbeddingModel string `env:"ARTGRAPH_EMBED_MODEL" envDefault:"sentence-transformers/all-MiniLM-L6-v2"`
	EmbeddingDim   int    `env:"ARTGRAPH_EMBED_DIM" envDefault:"384"`
	EmbedBatchSize int    `env:"EMBED_BATCH_SIZE" envDefault:"25"`
	EmbedMaxChars  int    `env:"EMBED_MAX_CHARS" envDefault:"1000"`

	WikidataEndpoint      string        `env:"WIKIDATA_ENDPOINT" envDefault:"https://query.wikidata.org/sparql"`
	WikidataUserAgent     string        `env:"WIKIDATA_USER_AGENT" envDefault:"AurumGalleryArtGraph/1.0 (curator@aurumgallery.example)"`
	WikidataDelay         time.Duration `env:"WIKIDATA_DELAY" envDefault:"1200ms"`
	WikidataTimeout       time.Duration `env:"WIKIDATA_TIMEOUT" envDefault:"30s"`
	WikidataBatchSize     int           `env:"WIKIDATA_BATCH" envDefault:"10"`
	WikidataRelationLimit int           `env:"WIKIDATA_REL_LIMIT" envDefault:"5"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIChatModel string `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o"`
}

// LoadConfig reads a .env file if one exists and parses the environment
// into a Config. A missing .env file is not an error.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, NewError("parse environment configuration", err)
	}
	return cfg, nil
}
