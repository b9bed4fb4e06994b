package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// ArtistsDBHandlerFunctions defines the interface for Artist node operations.
type ArtistsDBHandlerFunctions interface {
	UpsertProfile(ctx context.Context, artist *model.Artist) error
	UpsertHistoricInfo(ctx context.Context, name, years, school, url, nationality, movement string) error
	SelectDetail(ctx context.Context, name string) (*model.ArtistDetail, error)
	SelectArtistsNeedingSync(ctx context.Context, limit int) ([]model.Artist, error)
	SetWikidataMatch(ctx context.Context, name, wikidataID, label string) error
	SetWikidataNotFound(ctx context.Context, name string) error
	SetImage(ctx context.Context, name, url string) error
	MarkSynced(ctx context.Context, name string) error
	EnsureStubArtist(ctx context.Context, wikidataID, label, mergeName string) error
	MergeRelation(ctx context.Context, sourceWikidataID, targetWikidataID string, rel model.RelationType) error
	SelectDuplicateGroups(ctx context.Context) ([]model.DuplicateGroup, error)
	MergeDuplicate(ctx context.Context, primaryRef, duplicateRef string) error
}

// ArtistsDBHandler handles Artist node operations against the graph store.
type ArtistsDBHandler struct {
	db *Database
}

// NewArtistsDBHandler creates a new artists handler.
func NewArtistsDBHandler(db *Database) (*ArtistsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	db.Logger.Info("Initialized ArtistsDBHandler")

	return &ArtistsDBHandler{db: db}, nil
}

// UpsertProfile merges an artist by normalized name and sets the profile
// fields carried by the biography dataset. The caller must guard against an
// empty name; an empty merge key would collapse unrelated artists.
func (h *ArtistsDBHandler) UpsertProfile(ctx context.Context, artist *model.Artist) error {
	if artist == nil || artist.Name == "" {
		return helper.NewError("upsert artist profile", fmt.Errorf("artist name is empty"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (a:Artist {name: $name})
		SET a.bio = $bio,
		    a.years = $years,
		    a.wikipedia = $wikipedia,
		    a.paintings_count = coalesce(a.paintings_count, $paintings)
	`, map[string]any{
		"name":      artist.Name,
		"bio":       artist.Bio,
		"years":     artist.Years,
		"wikipedia": artist.Wikipedia,
		"paintings": artist.PaintingsCount,
	})
	if err != nil {
		return helper.NewError("upsert artist profile", err)
	}

	return nil
}

// UpsertHistoricInfo merges an artist by normalized name, adds the fields
// from the historic dataset without overwriting existing values, and
// attaches the artist to its movement when one is given.
func (h *ArtistsDBHandler) UpsertHistoricInfo(ctx context.Context, name, years, school, url, nationality, movement string) error {
	if name == "" {
		return helper.NewError("upsert artist info", fmt.Errorf("artist name is empty"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (a:Artist {name: $name})
		SET a.years = coalesce(a.years, $years),
		    a.school = coalesce(a.school, $school),
		    a.wga_url = coalesce(a.wga_url, $url),
		    a.nationality = coalesce(a.nationality, $nationality)
	`
	params := map[string]any{
		"name":        name,
		"years":       years,
		"school":      school,
		"url":         url,
		"nationality": nationality,
	}
	if movement != "" {
		query += `
		MERGE (m:Movement {name: $movement})
		MERGE (a)-[:BELONGS_TO]->(m)
		`
		params["movement"] = movement
	}

	if _, err := session.Run(ctx, query, params); err != nil {
		return helper.NewError("upsert artist info", err)
	}

	return nil
}

// SelectDetail loads the full profile view of one artist, including
// movements, artworks and all four relation directions. Returns nil when
// the artist does not exist.
func (h *ArtistsDBHandler) SelectDetail(ctx context.Context, name string) (*model.ArtistDetail, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Artist {name: $name})
		OPTIONAL MATCH (a)-[:BELONGS_TO]->(m:Movement)
		OPTIONAL MATCH (a)-[:CREATED]->(w:Artwork)
		OPTIONAL MATCH (a)-[:INFLUENCED_BY]->(influencer:Artist)
		OPTIONAL MATCH (influenced:Artist)-[:INFLUENCED_BY]->(a)
		OPTIONAL MATCH (a)-[:STUDENT_OF]->(mentor:Artist)
		OPTIONAL MATCH (student:Artist)-[:STUDENT_OF]->(a)
		WITH a,
		     collect(DISTINCT m.name) AS movements,
		     collect(DISTINCT w) AS artworks,
		     collect(DISTINCT influencer) AS influencers,
		     collect(DISTINCT influenced) AS influenced,
		     collect(DISTINCT mentor) AS mentors,
		     collect(DISTINCT student) AS students
		RETURN a, movements,
		       size(artworks) AS graphPaintingCount,
		       [w IN artworks WHERE w IS NOT NULL | {id: toString(w.id), title: w.title, url: w.url, info: w.meta_data}] AS artworkRows,
		       [n IN influencers WHERE n IS NOT NULL | {name: n.name, wikidata_id: n.wikidata_id}] AS influencedBy,
		       [n IN influenced WHERE n IS NOT NULL | {name: n.name, wikidata_id: n.wikidata_id}] AS influences,
		       [n IN mentors WHERE n IS NOT NULL | {name: n.name, wikidata_id: n.wikidata_id}] AS mentorRows,
		       [n IN students WHERE n IS NOT NULL | {name: n.name, wikidata_id: n.wikidata_id}] AS studentRows
	`

	result, err := session.Run(ctx, query, map[string]any{"name": name})
	if err != nil {
		return nil, helper.NewError("select artist detail", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		// No row means no such artist; not an error for the caller.
		return nil, nil
	}

	nodeRaw, _ := record.Get("a")
	node, ok := nodeRaw.(neo4j.Node)
	if !ok {
		return nil, helper.NewError("select artist detail", fmt.Errorf("unexpected row shape for artist node"))
	}

	detail := &model.ArtistDetail{
		Name:        nodeProp(node, "name"),
		Bio:         nodeProp(node, "bio"),
		Nationality: nodeProp(node, "nationality"),
		Years:       nodeProp(node, "years"),
		Wikipedia:   nodeProp(node, "wikipedia"),
		School:      nodeProp(node, "school"),
	}
	if detail.Bio == "" {
		detail.Bio = "Biography not available."
	}
	if detail.Nationality == "" {
		detail.Nationality = "Unknown"
	}

	// Prefer the precomputed count from the source dataset, fall back to
	// the number of CREATED edges in the graph.
	if counted := asInt64(node.Props["paintings_count"]); counted > 0 {
		detail.PaintingsCount = counted
	} else {
		graphCount, _ := record.Get("graphPaintingCount")
		detail.PaintingsCount = asInt64(graphCount)
	}

	movementsRaw, _ := record.Get("movements")
	if list, ok := movementsRaw.([]any); ok {
		for _, m := range list {
			if s := asString(m); s != "" {
				detail.Movements = append(detail.Movements, s)
			}
		}
	}

	artworksRaw, _ := record.Get("artworkRows")
	if list, ok := artworksRaw.([]any); ok {
		for i, item := range list {
			if i >= 20 {
				break
			}
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			detail.Artworks = append(detail.Artworks, model.ArtworkSummary{
				ID:    asString(row["id"]),
				Title: asString(row["title"]),
				URL:   asString(row["url"]),
				Info:  asString(row["info"]),
			})
		}
	}

	detail.InfluencedBy = relatedArtists(record, "influencedBy")
	detail.Influences = relatedArtists(record, "influences")
	detail.Mentors = relatedArtists(record, "mentorRows")
	detail.Students = relatedArtists(record, "studentRows")

	return detail, nil
}

func relatedArtists(record *neo4j.Record, key string) []model.RelatedArtist {
	raw, _ := record.Get(key)
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var related []model.RelatedArtist
	for _, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := asString(row["name"])
		if name == "" {
			continue
		}
		related = append(related, model.RelatedArtist{
			Name:       name,
			WikidataID: asString(row["wikidata_id"]),
		})
	}
	return related
}

// SelectArtistsNeedingSync pages artists the resolver still has work for:
// never looked up, or resolved but not yet marked synced. Artists carrying
// the not-found sentinel are excluded so the batch terminates.
func (h *ArtistsDBHandler) SelectArtistsNeedingSync(ctx context.Context, limit int) ([]model.Artist, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Artist)
		WHERE a.wikidata_id IS NULL
		   OR (a.wikidata_id <> $notFound AND a.synced_at IS NULL)
		RETURN a.name AS name, a.wikidata_id AS wikidataId, a.image AS image
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]any{
		"notFound": model.WikidataNotFound,
		"limit":    limit,
	})
	if err != nil {
		return nil, helper.NewError("select artists needing sync", err)
	}

	var artists []model.Artist
	for result.Next(ctx) {
		record := result.Record()
		name, _ := record.Get("name")
		wikidataID, _ := record.Get("wikidataId")
		image, _ := record.Get("image")

		if asString(name) == "" {
			continue
		}
		artists = append(artists, model.Artist{
			Name:       asString(name),
			WikidataID: asString(wikidataID),
			Image:      asString(image),
		})
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("select artists needing sync rows", err)
	}

	return artists, nil
}

// SetWikidataMatch persists the external identifier and label. The label is
// kept non-destructively so an earlier, richer label survives re-syncs.
func (h *ArtistsDBHandler) SetWikidataMatch(ctx context.Context, name, wikidataID, label string) error {
	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (a:Artist {name: $name})
		SET a.wikidata_id = $id,
		    a.wikidata_label = coalesce(a.wikidata_label, $label)
	`, map[string]any{"name": name, "id": wikidataID, "label": label})
	if err != nil {
		return helper.NewError("set wikidata match", err)
	}
	return nil
}

// SetWikidataNotFound stores the terminal sentinel after all lookup
// variants failed, so the artist is not retried every run.
func (h *ArtistsDBHandler) SetWikidataNotFound(ctx context.Context, name string) error {
	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (a:Artist {name: $name})
		SET a.wikidata_id = $notFound
	`, map[string]any{"name": name, "notFound": model.WikidataNotFound})
	if err != nil {
		return helper.NewError("set wikidata not found", err)
	}
	return nil
}

// SetImage stores a representative image URL without overwriting one that
// is already present.
func (h *ArtistsDBHandler) SetImage(ctx context.Context, name, url string) error {
	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (a:Artist {name: $name})
		SET a.image = coalesce(a.image, $url)
	`, map[string]any{"name": name, "url": url})
	if err != nil {
		return helper.NewError("set artist image", err)
	}
	return nil
}

// MarkSynced stamps the sync marker so future batch passes skip the artist.
func (h *ArtistsDBHandler) MarkSynced(ctx context.Context, name string) error {
	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (a:Artist {name: $name})
		SET a.synced_at = datetime()
	`, map[string]any{"name": name})
	if err != nil {
		return helper.NewError("mark artist synced", err)
	}
	return nil
}

// EnsureStubArtist guarantees a relation target exists: reuse by external
// id first, then by merge name, else create a stub keyed by external id.
// mergeName is the normalized label; when it is empty the stub is merged by
// external id alone.
func (h *ArtistsDBHandler) EnsureStubArtist(ctx context.Context, wikidataID, label, mergeName string) error {
	if wikidataID == "" {
		return helper.NewError("ensure stub artist", fmt.Errorf("wikidata id is empty"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (a:Artist {wikidata_id: $id})
			SET a.name = coalesce(a.name, $label),
			    a.wikidata_label = coalesce(a.wikidata_label, $label)
			RETURN count(a) AS n
		`, map[string]any{"id": wikidataID, "label": label})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if n, _ := record.Get("n"); asInt64(n) > 0 {
			return nil, nil
		}

		if mergeName == "" {
			_, err = tx.Run(ctx, `
				MERGE (a:Artist {wikidata_id: $id})
				ON CREATE SET a.name = $label, a.wikidata_label = $label
			`, map[string]any{"id": wikidataID, "label": label})
			return nil, err
		}

		_, err = tx.Run(ctx, `
			MERGE (a:Artist {name: $name})
			SET a.wikidata_id = coalesce(a.wikidata_id, $id),
			    a.wikidata_label = coalesce(a.wikidata_label, $label)
		`, map[string]any{"name": mergeName, "id": wikidataID, "label": label})
		return nil, err
	})
	if err != nil {
		return helper.NewError("ensure stub artist", err)
	}
	return nil
}

// MergeRelation idempotently connects two resolved artists. The relation
// type is validated against the known edge types because Cypher cannot
// parameterize relationship types.
func (h *ArtistsDBHandler) MergeRelation(ctx context.Context, sourceWikidataID, targetWikidataID string, rel model.RelationType) error {
	if rel != model.RelationInfluencedBy && rel != model.RelationStudentOf {
		return helper.NewError("merge relation", fmt.Errorf("unsupported relation type %q", rel))
	}
	if sourceWikidataID == targetWikidataID {
		return nil
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (source:Artist {wikidata_id: $sourceId})
		MATCH (target:Artist {wikidata_id: $targetId})
		MERGE (source)-[:%s]->(target)
	`, rel)

	_, err := session.Run(ctx, query, map[string]any{
		"sourceId": sourceWikidataID,
		"targetId": targetWikidataID,
	})
	if err != nil {
		return helper.NewError("merge relation", err)
	}
	return nil
}

// SelectDuplicateGroups finds sets of artists sharing one external id
// (sentinel excluded), with the ranking signals for the merge pass.
func (h *ArtistsDBHandler) SelectDuplicateGroups(ctx context.Context) ([]model.DuplicateGroup, error) {
	session := h.db.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Artist)
		WHERE a.wikidata_id IS NOT NULL AND a.wikidata_id <> $notFound
		OPTIONAL MATCH (a)-[:CREATED]->(w:Artwork)
		WITH a, count(w) AS artworkCount
		WITH a.wikidata_id AS wikidataId,
		     collect({
		       ref: elementId(a),
		       name: a.name,
		       artworks: artworkCount,
		       hasWikipedia: a.wikipedia IS NOT NULL AND a.wikipedia <> '',
		       fields: size(keys(a))
		     }) AS members
		WHERE size(members) > 1
		RETURN wikidataId, members
	`

	result, err := session.Run(ctx, query, map[string]any{"notFound": model.WikidataNotFound})
	if err != nil {
		return nil, helper.NewError("select duplicate groups", err)
	}

	var groups []model.DuplicateGroup
	for result.Next(ctx) {
		record := result.Record()
		wikidataID, _ := record.Get("wikidataId")
		membersRaw, _ := record.Get("members")

		group := model.DuplicateGroup{WikidataID: asString(wikidataID)}
		if list, ok := membersRaw.([]any); ok {
			for _, item := range list {
				row, ok := item.(map[string]any)
				if !ok {
					continue
				}
				hasWikipedia, _ := row["hasWikipedia"].(bool)
				group.Members = append(group.Members, model.DuplicateCandidate{
					Ref:          asString(row["ref"]),
					Name:         asString(row["name"]),
					ArtworkCount: asInt64(row["artworks"]),
					HasWikipedia: hasWikipedia,
					FieldCount:   asInt64(row["fields"]),
				})
			}
		}
		if len(group.Members) > 1 {
			groups = append(groups, group)
		}
	}
	if err := result.Err(); err != nil {
		return nil, helper.NewError("select duplicate groups rows", err)
	}

	return groups, nil
}

// MergeDuplicate folds one duplicate node into the primary inside a single
// transaction: copy missing scalar attributes, re-point influence and
// student edges in both directions, then remove the duplicate with its
// remaining edges. Re-running after the duplicate is gone is a no-op.
func (h *ArtistsDBHandler) MergeDuplicate(ctx context.Context, primaryRef, duplicateRef string) error {
	if primaryRef == "" || duplicateRef == "" || primaryRef == duplicateRef {
		return helper.NewError("merge duplicate", fmt.Errorf("invalid node references"))
	}

	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	statements := []string{
		`MATCH (p:Artist), (d:Artist)
		 WHERE elementId(p) = $primary AND elementId(d) = $duplicate
		 SET p.bio = coalesce(p.bio, d.bio),
		     p.nationality = coalesce(p.nationality, d.nationality),
		     p.image = coalesce(p.image, d.image),
		     p.wikidata_label = coalesce(p.wikidata_label, d.wikidata_label),
		     p.wikipedia = coalesce(p.wikipedia, d.wikipedia)`,
		`MATCH (p:Artist), (d:Artist)-[:INFLUENCED_BY]->(t:Artist)
		 WHERE elementId(p) = $primary AND elementId(d) = $duplicate AND t <> p
		 MERGE (p)-[:INFLUENCED_BY]->(t)`,
		`MATCH (p:Artist), (s:Artist)-[:INFLUENCED_BY]->(d:Artist)
		 WHERE elementId(p) = $primary AND elementId(d) = $duplicate AND s <> p
		 MERGE (s)-[:INFLUENCED_BY]->(p)`,
		`MATCH (p:Artist), (d:Artist)-[:STUDENT_OF]->(t:Artist)
		 WHERE elementId(p) = $primary AND elementId(d) = $duplicate AND t <> p
		 MERGE (p)-[:STUDENT_OF]->(t)`,
		`MATCH (p:Artist), (s:Artist)-[:STUDENT_OF]->(d:Artist)
		 WHERE elementId(p) = $primary AND elementId(d) = $duplicate AND s <> p
		 MERGE (s)-[:STUDENT_OF]->(p)`,
		`MATCH (d:Artist)
		 WHERE elementId(d) = $duplicate
		 DETACH DELETE d`,
	}

	params := map[string]any{"primary": primaryRef, "duplicate": duplicateRef}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return helper.NewError("merge duplicate", err)
	}

	h.db.Logger.Debug("Merged duplicate artist node",
		slog.String("primary", primaryRef), slog.String("duplicate", duplicateRef))

	return nil
}
