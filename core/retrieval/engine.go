package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aurumgallery/artgraph/core/pipeline"
	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// Query bounds shared by both retrieval surfaces. Keyword results dominate
// the fused list, the semantic stage fills the tail.
const (
	keywordLimit        = 20
	semanticTopK        = 10
	contextArtworkTopK  = 5
	contextArtistLimit  = 3
	contextSeparator    = "\n\n---\n\n"
	contextBioMaxChars  = 300
	contextMetaMaxChars = 200
)

// SearchStore is the store surface the retrieval engine needs.
type SearchStore interface {
	SelectKeywordMatches(ctx context.Context, keyword string, limit int) ([]model.SearchResult, error)
	SelectSemanticMatches(ctx context.Context, embedding []float32, k int) ([]model.SemanticMatch, error)
	SelectContextArtworks(ctx context.Context, embedding []float32, k int) ([]model.ArtworkContext, error)
	SelectContextArtists(ctx context.Context, keyword string, limit int) ([]model.ArtistContext, error)
}

// Engine fuses keyword and semantic retrieval over the graph store. Both
// surfaces degrade instead of failing: a broken stage contributes nothing
// and the remaining results still come back.
type Engine struct {
	store  SearchStore
	embed  pipeline.EmbedFunc
	logger *slog.Logger
}

// NewEngine creates a retrieval engine. The embedder may be nil, in which
// case the semantic stage is disabled and only keyword retrieval runs.
func NewEngine(store SearchStore, embed pipeline.EmbedFunc, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, helper.NewError("retrieval engine validation", fmt.Errorf("store is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{store: store, embed: embed, logger: logger}, nil
}

// Search runs the hybrid query and fuses the stages into one deduplicated
// list. Keyword matches keep their store order and rank first; semantic
// matches append in descending similarity. A whitespace-only query returns
// an empty list without touching the store.
func (e *Engine) Search(ctx context.Context, query string, opts model.SearchOptions) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}, nil
	}

	keywordMatches, err := e.store.SelectKeywordMatches(ctx, query, keywordLimit)
	if err != nil {
		// The search surface never errors out to the caller.
		e.logger.Error("Keyword stage failed", slog.String("query", query), slog.Any("error", err))
		return []model.SearchResult{}, nil
	}

	results := make([]model.SearchResult, 0, len(keywordMatches))
	seen := make(map[string]bool, len(keywordMatches))
	for _, match := range keywordMatches {
		if seen[match.DedupKey()] {
			continue
		}
		seen[match.DedupKey()] = true
		results = append(results, match)
	}

	if opts.Semantic && e.embed != nil {
		for _, match := range e.semanticResults(ctx, query) {
			if seen[match.DedupKey()] {
				continue
			}
			seen[match.DedupKey()] = true
			results = append(results, match)
		}
	}

	if opts.Filter != "" {
		filtered := results[:0]
		for _, r := range results {
			if r.Kind == opts.Filter {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	switch opts.Sort {
	case model.SortAsc:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
		})
	case model.SortDesc:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Title) > strings.ToLower(results[j].Title)
		})
	}

	return results, nil
}

// semanticResults runs the vector stage fail-open: any error yields an
// empty contribution.
func (e *Engine) semanticResults(ctx context.Context, query string) []model.SearchResult {
	embedding, err := pipeline.EmbedText(e.embed, query)
	if err != nil || len(embedding) == 0 {
		if err != nil {
			e.logger.Warn("Semantic stage skipped, embedding failed",
				slog.String("query", query), slog.Any("error", err))
		}
		return nil
	}

	matches, err := e.store.SelectSemanticMatches(ctx, embedding, semanticTopK)
	if err != nil {
		e.logger.Warn("Semantic stage skipped, vector query failed",
			slog.String("query", query), slog.Any("error", err))
		return nil
	}

	results := make([]model.SearchResult, 0, len(matches))
	for _, match := range matches {
		subtitle := "Artwork"
		if match.ArtistName != "" {
			subtitle = "Similar to " + match.ArtistName
		}
		score := match.Score
		results = append(results, model.SearchResult{
			Kind:     model.ResultKindArtwork,
			Title:    match.Title,
			Subtitle: subtitle,
			LinkKey:  match.ArtworkID,
			Score:    &score,
		})
	}
	return results
}

// ChatContext assembles the grounding text for one chat question: the
// semantically nearest artworks followed by keyword-matched artists, each
// rendered as a labeled block. Returns the empty string when nothing
// matches or every stage fails; the caller decides how to answer without
// grounding.
func (e *Engine) ChatContext(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return ""
	}

	type block struct {
		kind  model.ResultKind
		title string
		text  string
	}
	var blocks []block

	if e.embed != nil {
		embedding, err := pipeline.EmbedText(e.embed, question)
		if err != nil {
			e.logger.Warn("Context artwork stage skipped, embedding failed", slog.Any("error", err))
		} else if len(embedding) > 0 {
			rows, err := e.store.SelectContextArtworks(ctx, embedding, contextArtworkTopK)
			if err != nil {
				e.logger.Warn("Context artwork stage failed", slog.Any("error", err))
			}
			for _, row := range rows {
				var lines []string
				lines = append(lines, "[ARTWORK] Title: "+row.Title)
				if row.ArtistName != "" {
					lines = append(lines, "Artist: "+row.ArtistName)
				}
				if meta := truncate(row.MetaData, contextMetaMaxChars); meta != "" {
					lines = append(lines, "Details: "+meta)
				}
				blocks = append(blocks, block{
					kind:  model.ResultKindArtwork,
					title: row.Title,
					text:  strings.Join(lines, "\n"),
				})
			}
		}
	}

	artistRows, err := e.store.SelectContextArtists(ctx, question, contextArtistLimit)
	if err != nil {
		e.logger.Warn("Context artist stage failed", slog.Any("error", err))
	}
	for _, row := range artistRows {
		var lines []string
		lines = append(lines, "[ARTIST] Name: "+row.Name)
		if row.Nationality != "" {
			lines = append(lines, "Nationality: "+row.Nationality)
		}
		if len(row.Movements) > 0 {
			lines = append(lines, "Movements: "+strings.Join(row.Movements, ", "))
		}
		if bio := truncate(row.Bio, contextBioMaxChars); bio != "" {
			lines = append(lines, "Bio: "+bio)
		}
		blocks = append(blocks, block{
			kind:  model.ResultKindArtist,
			title: row.Name,
			text:  strings.Join(lines, "\n"),
		})
	}

	seen := make(map[string]bool, len(blocks))
	var parts []string
	for _, b := range blocks {
		key := string(b.kind) + "-" + b.title
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, b.text)
	}

	return strings.Join(parts, contextSeparator)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
