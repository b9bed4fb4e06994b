package database

import (
	"context"
	"fmt"

	"github.com/aurumgallery/artgraph/helper"
)

// EnsureSchema creates the uniqueness constraints, lookup indexes and the
// artwork vector index. Safe to re-run; existing schema objects are kept.
// The embedding dimension comes from configuration, not user input.
func (d *Database) EnsureSchema(ctx context.Context, embeddingDim int) error {
	statements := []string{
		`CREATE CONSTRAINT artwork_id_unique IF NOT EXISTS FOR (w:Artwork) REQUIRE w.id IS UNIQUE`,
		`CREATE CONSTRAINT movement_name_unique IF NOT EXISTS FOR (m:Movement) REQUIRE m.name IS UNIQUE`,
		`CREATE INDEX artist_name_idx IF NOT EXISTS FOR (a:Artist) ON (a.name)`,
		`CREATE INDEX artist_wikidata_idx IF NOT EXISTS FOR (a:Artist) ON (a.wikidata_id)`,
		fmt.Sprintf(`CREATE VECTOR INDEX artwork_embeddings IF NOT EXISTS
			FOR (w:Artwork) ON (w.embedding)
			OPTIONS {indexConfig: {
				`+"`vector.dimensions`"+`: %d,
				`+"`vector.similarity_function`"+`: 'cosine'
			}}`, embeddingDim),
	}

	session := d.WriteSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return helper.NewError("ensure schema", err)
		}
	}

	d.Logger.Info("Checked/created graph schema and vector index")

	return nil
}
