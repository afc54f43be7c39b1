// Package main converts a catalog CSV into a SQLite snapshot the server can
// load and watch.
//
//	import -in anime.csv -out catalog.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/catalog/sqlite"
	"github.com/animerec/animerec-server/internal/logger"
)

func main() {
	in := flag.String("in", "", "Catalog CSV to read")
	out := flag.String("out", "catalog.db", "SQLite snapshot to write")
	clean := flag.Bool("clean", true, "Apply cleaning filters")
	exclude := flag.String("exclude-genres", "", "Comma-separated genres dropped by cleaning (default: ecchi,hentai)")
	flag.Parse()

	log := logger.New(logger.Config{Writer: os.Stderr})

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: import -in anime.csv [-out catalog.db]")
		os.Exit(2)
	}

	opts := catalog.CleanOptions{Enabled: *clean}
	if *exclude != "" {
		for g := range strings.SplitSeq(*exclude, ",") {
			if g = strings.TrimSpace(g); g != "" {
				opts.ExcludedGenres = append(opts.ExcludedGenres, g)
			}
		}
	}

	stats, err := importCSV(context.Background(), *in, *out, opts, log.Logger)
	if err != nil {
		log.Fatal("Import failed", "error", err)
	}

	log.Info("Import complete",
		"in", *in,
		"out", *out,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"dropped", stats.Dropped,
	)
	for reason, n := range stats.DroppedBy {
		log.Info("Dropped rows", "filter", reason, "count", n)
	}
}

// importCSV reads the CSV at in and replaces the snapshot stored at out.
func importCSV(ctx context.Context, in, out string, opts catalog.CleanOptions, log *slog.Logger) (catalog.ReadStats, error) {
	file, err := os.Open(in) //#nosec G304 -- path comes from the command line
	if err != nil {
		return catalog.ReadStats{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	records, stats, err := catalog.ReadCSV(file, opts)
	if err != nil {
		return stats, fmt.Errorf("parse csv: %w", err)
	}

	store, err := sqlite.Open(out, log)
	if err != nil {
		return stats, err
	}
	defer store.Close()

	if err := store.Save(ctx, records, "csv:"+in); err != nil {
		return stats, fmt.Errorf("save snapshot: %w", err)
	}
	return stats, nil
}
