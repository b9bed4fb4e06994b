package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// DedupeStore is the store surface the duplicate merge pass needs.
type DedupeStore interface {
	SelectDuplicateGroups(ctx context.Context) ([]model.DuplicateGroup, error)
	MergeDuplicate(ctx context.Context, primaryRef, duplicateRef string) error
}

// Deduper folds artists sharing one external identifier into a single node.
// Running it on a clean graph is a no-op.
type Deduper struct {
	store  DedupeStore
	logger *slog.Logger
}

// NewDeduper creates a duplicate merge pass over the given store.
func NewDeduper(store DedupeStore, logger *slog.Logger) (*Deduper, error) {
	if store == nil {
		return nil, helper.NewError("deduper validation", fmt.Errorf("store is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Deduper{store: store, logger: logger}, nil
}

// Run merges every duplicate group, best member first. Returns the number
// of duplicate nodes removed. A failing group is logged and skipped; the
// next run picks it up again.
func (d *Deduper) Run(ctx context.Context) (int, error) {
	groups, err := d.store.SelectDuplicateGroups(ctx)
	if err != nil {
		return 0, helper.NewError("select duplicate groups", err)
	}

	merged := 0
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		ranked := group.RankMembers()
		if len(ranked) < 2 {
			continue
		}
		primary := ranked[0]

		groupMerged := 0
		for _, duplicate := range ranked[1:] {
			if err := d.store.MergeDuplicate(ctx, primary.Ref, duplicate.Ref); err != nil {
				d.logger.Warn("Duplicate merge failed",
					slog.String("wikidataId", group.WikidataID),
					slog.String("primary", primary.Name),
					slog.String("duplicate", duplicate.Name),
					slog.Any("error", err))
				continue
			}
			groupMerged++
		}
		merged += groupMerged

		d.logger.Info("Merged duplicate group",
			slog.String("wikidataId", group.WikidataID),
			slog.String("primary", primary.Name),
			slog.Int("removed", groupMerged))
	}

	return merged, nil
}
