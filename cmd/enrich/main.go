package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aurumgallery/artgraph"
	"github.com/aurumgallery/artgraph/helper"
)

func main() {
	skipResolve := flag.Bool("skip-resolve", false, "skip the entity resolution pass")
	skipDedupe := flag.Bool("skip-dedupe", false, "skip the duplicate merge pass")
	flag.Parse()

	cfg, err := helper.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ag, err := artgraph.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	defer func() { _ = ag.Close(ctx) }()

	logger := ag.Logger()

	if !*skipResolve {
		stats, err := ag.ResolveEntities(ctx)
		if err != nil {
			logger.Error("Entity resolution failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Entity resolution finished",
			slog.Int("processed", stats.Processed), slog.Int("resolved", stats.Resolved),
			slog.Int("notFound", stats.NotFound), slog.Int("failed", stats.Failed))
	}

	if !*skipDedupe {
		merged, err := ag.DeduplicateArtists(ctx)
		if err != nil {
			logger.Error("Duplicate merge failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Duplicate merge finished", slog.Int("removed", merged))
	}
}
