package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aurumgallery/artgraph"
	"github.com/aurumgallery/artgraph/helper"
)

func main() {
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

	if err := ag.UseDefaultEmbedder(); err != nil {
		logger.Error("Embedder setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	written, err := ag.BackfillEmbeddings(ctx)
	if err != nil {
		logger.Error("Embedding backfill failed",
			slog.Int("written", written), slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Embedding backfill finished", slog.Int("written", written))
}
