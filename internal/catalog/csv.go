package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/animerec/animerec-server/internal/normalize"
)

// CSV column names, matching the MyAnimeList dataset export.
const (
	colID            = "anime_id"
	colTitle         = "title"
	colTitleEnglish  = "title_english"
	colTitleJapanese = "title_japanese"
	colTitleSynonyms = "title_synonyms"
	colGenre         = "genre"
	colStudio        = "studio"
	colRelated       = "related"
	colImageURL      = "image_url"
	colPopularity    = "popularity"
	colEpisodes      = "episodes"
	colRank          = "rank"
	colScore         = "score"
	colScoredBy      = "scored_by"
)

// requiredColumns must be present in every catalog CSV header.
var requiredColumns = []string{colID, colTitle, colGenre, colStudio, colRelated, colPopularity}

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("catalog csv: missing required column")

// DefaultExcludedGenres are dropped by the cleaning pass unless overridden.
var DefaultExcludedGenres = []string{"ecchi", "hentai"}

// CleanOptions controls the optional row-cleaning pass applied while reading.
type CleanOptions struct {
	// Enabled turns cleaning on. When false every parseable row is kept.
	Enabled bool
	// ExcludedGenres drops rows whose genre column contains any of these,
	// case-insensitively. Nil means DefaultExcludedGenres.
	ExcludedGenres []string
}

// ReadStats summarizes a CSV read.
type ReadStats struct {
	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
	// DroppedBy counts dropped rows by the first filter that rejected them.
	DroppedBy map[string]int `json:"dropped_by,omitempty"`
}

func (s *ReadStats) drop(reason string) {
	s.Dropped++
	if s.DroppedBy == nil {
		s.DroppedBy = make(map[string]int)
	}
	s.DroppedBy[reason]++
}

// ReadCSV parses catalog records from r. Rows with an empty id are skipped;
// an unparseable popularity becomes Unknown.
func ReadCSV(r io.Reader, opts CleanOptions) ([]Record, ReadStats, error) {
	var stats ReadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, stats, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}

	excluded := opts.ExcludedGenres
	if excluded == nil {
		excluded = DefaultExcludedGenres
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read csv row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		get := func(name string) (string, bool) {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return "", false
			}
			return row[i], true
		}
		field := func(name string) string {
			v, _ := get(name)
			return v
		}

		id := normalize.Text(field(colID))
		if id == "" {
			stats.drop("missing_id")
			continue
		}

		if opts.Enabled {
			if reason := rejectReason(get, excluded); reason != "" {
				stats.drop(reason)
				continue
			}
		}

		rec := Record{
			ID:         ID(id),
			Title:      normalize.Text(field(colTitle)),
			Genres:     normalize.List(field(colGenre)),
			Studio:     normalize.Text(field(colStudio)),
			Popularity: ParseRank(field(colPopularity)),
			ImageURL:   normalize.Text(field(colImageURL)),
		}
		for _, alias := range []string{field(colTitleEnglish), field(colTitleJapanese)} {
			if alias = normalize.Text(alias); alias != "" {
				rec.Aliases = append(rec.Aliases, alias)
			}
		}
		rec.Aliases = append(rec.Aliases, normalize.List(field(colTitleSynonyms))...)
		for _, rel := range normalize.List(field(colRelated)) {
			rec.Related = append(rec.Related, ID(rel))
		}

		records = append(records, rec)
		stats.Kept++
	}

	return records, stats, nil
}

// rejectReason applies the cleaning filters in order and names the first one
// that rejects the row. Filters whose column is absent from the header are skipped.
func rejectReason(get func(string) (string, bool), excluded []string) string {
	numeric := []struct {
		col    string
		reason string
		ok     func(float64) bool
	}{
		{colEpisodes, "episodes", func(v float64) bool { return v >= 1 }},
		{colRank, "rank", func(v float64) bool { return v >= 1 }},
		{colScore, "score", func(v float64) bool { return v > 0 }},
		{colScoredBy, "scored_by", func(v float64) bool { return v > 0 }},
	}
	for _, f := range numeric {
		raw, present := get(f.col)
		if !present {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || !f.ok(v) {
			return f.reason
		}
	}

	if raw, present := get(colGenre); present {
		genre := strings.ToLower(raw)
		for _, g := range excluded {
			if g != "" && strings.Contains(genre, strings.ToLower(g)) {
				return "excluded_genre"
			}
		}
	}

	if raw, present := get(colImageURL); present && strings.TrimSpace(raw) == "" {
		return "image_url"
	}

	return ""
}

// CSVFile is a Source reading records from a CSV file on disk.
type CSVFile struct {
	Path  string
	Clean CleanOptions
}

// Load implements Source.
func (f *CSVFile) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path) //#nosec G304 -- catalog path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer file.Close()

	records, _, err := ReadCSV(file, f.Clean)
	if err != nil {
		return nil, fmt.Errorf("parse catalog csv %s: %w", f.Path, err)
	}
	return records, nil
}

// Describe implements Source.
func (f *CSVFile) Describe() string {
	return "csv:" + f.Path
}
