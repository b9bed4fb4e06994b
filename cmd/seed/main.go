package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aurumgallery/artgraph"
	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

func main() {
	artistsPath := flag.String("artists", "", "path to the artist biography CSV")
	infoPath := flag.String("info", "", "path to the historic artist info CSV")
	artworksPath := flag.String("artworks", "", "path to the artwork catalogue CSV")
	wipe := flag.Bool("wipe", false, "delete the entire graph before seeding")
	flag.Parse()

	if *artistsPath == "" && *infoPath == "" && *artworksPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass at least one of -artists, -info, -artworks")
		flag.Usage()
		os.Exit(2)
	}

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

	if *wipe {
		if _, err := ag.RawQuery(ctx, `MATCH (n) DETACH DELETE n`); err != nil {
			logger.Error("Wipe failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Wiped graph")
	}

	if *artistsPath != "" {
		if err := seedArtists(ctx, ag, *artistsPath); err != nil {
			logger.Error("Artist seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if *infoPath != "" {
		if err := seedHistoricInfo(ctx, ag, *infoPath); err != nil {
			logger.Error("Historic info seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if *artworksPath != "" {
		if err := seedArtworks(ctx, ag, *artworksPath); err != nil {
			logger.Error("Artwork seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// csvRows streams a CSV file as header-keyed maps. Column lookup is
// case-insensitive; short rows are padded with empty strings.
func csvRows(path string, row func(get func(column string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return helper.NewError("open csv", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return helper.NewError("read csv header", err)
	}
	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.ToLower(strings.TrimSpace(column))] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return helper.NewError("read csv row", err)
		}

		get := func(column string) string {
			i, ok := index[strings.ToLower(column)]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if err := row(get); err != nil {
			return err
		}
	}
}

// seedArtists imports the biography dataset: profile fields plus the
// movements carried in the genre column.
func seedArtists(ctx context.Context, ag *artgraph.ArtGraph, path string) error {
	logger := ag.Logger()
	count, skipped := 0, 0

	err := csvRows(path, func(get func(string) string) error {
		name := model.NormalizeName(get("name"))
		if name == "" {
			skipped++
			return nil
		}

		paintings, _ := strconv.ParseInt(get("paintings"), 10, 64)
		artist := &model.Artist{
			Name:           name,
			Bio:            get("bio"),
			Years:          get("years"),
			Nationality:    get("nationality"),
			Wikipedia:      get("wikipedia"),
			PaintingsCount: paintings,
		}
		if err := ag.Artists.UpsertProfile(ctx, artist); err != nil {
			return err
		}

		for _, movement := range strings.Split(get("genre"), ",") {
			movement = strings.TrimSpace(movement)
			if movement == "" {
				continue
			}
			err := ag.Artists.UpsertHistoricInfo(ctx, name, "", "", "", get("nationality"), movement)
			if err != nil {
				return err
			}
		}

		count++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Seeded artist profiles", slog.Int("imported", count), slog.Int("skipped", skipped))
	return nil
}

// seedHistoricInfo imports the historic catalogue dataset without
// overwriting richer biography data.
func seedHistoricInfo(ctx context.Context, ag *artgraph.ArtGraph, path string) error {
	logger := ag.Logger()
	count, skipped := 0, 0

	err := csvRows(path, func(get func(string) string) error {
		name := model.NormalizeName(get("artist"))
		if name == "" {
			name = model.NormalizeName(get("name"))
		}
		if name == "" {
			skipped++
			return nil
		}

		err := ag.Artists.UpsertHistoricInfo(ctx, name,
			get("years"), get("school"), get("url"), get("nationality"), get("movement"))
		if err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Seeded historic artist info", slog.Int("imported", count), slog.Int("skipped", skipped))
	return nil
}

// seedArtworks imports the artwork catalogue and attaches each work to its
// creating artist.
func seedArtworks(ctx context.Context, ag *artgraph.ArtGraph, path string) error {
	logger := ag.Logger()
	count, skipped := 0, 0

	err := csvRows(path, func(get func(string) string) error {
		id := get("id")
		title := get("title")
		artistName := model.NormalizeName(get("artist"))
		if id == "" || title == "" || artistName == "" {
			skipped++
			return nil
		}

		artwork := &model.Artwork{
			ID:       id,
			Title:    title,
			URL:      get("url"),
			MetaData: get("details"),
		}
		if err := ag.Artworks.UpsertArtwork(ctx, artwork, artistName); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Seeded artworks", slog.Int("imported", count), slog.Int("skipped", skipped))
	return nil
}
