package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/animerec/animerec-server/internal/catalog"
)

const (
	metaSavedAt = "saved_at"
	metaRecords = "records"
	metaOrigin  = "origin"
)

// Info describes the stored snapshot.
type Info struct {
	SavedAt time.Time
	Records int
	Origin  string
}

// ErrNoSnapshot is returned by Info when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no catalog snapshot saved")

// Save replaces the stored snapshot with records in a single transaction,
// preserving their order. origin is recorded for diagnostics.
func (s *Store) Save(ctx context.Context, records []catalog.Record, origin string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"record_aliases", "record_genres", "record_related", "records", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insRecord, err := tx.PrepareContext(ctx, `
		INSERT INTO records (position, id, title, studio, popularity, image_url)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer insRecord.Close()

	insAlias, err := tx.PrepareContext(ctx, `INSERT INTO record_aliases (record_position, ordinal, alias) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare aliases: %w", err)
	}
	defer insAlias.Close()

	insGenre, err := tx.PrepareContext(ctx, `INSERT INTO record_genres (record_position, ordinal, genre) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare genres: %w", err)
	}
	defer insGenre.Close()

	insRelated, err := tx.PrepareContext(ctx, `INSERT INTO record_related (record_position, ordinal, related_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare related: %w", err)
	}
	defer insRelated.Close()

	for pos, rec := range records {
		rank, _ := rec.Popularity.Value()
		if _, err := insRecord.ExecContext(ctx,
			pos, string(rec.ID), rec.Title, rec.Studio, nullInt64(int64(rank)), rec.ImageURL,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		for i, alias := range rec.Aliases {
			if _, err := insAlias.ExecContext(ctx, pos, i, alias); err != nil {
				return fmt.Errorf("insert alias for %s: %w", rec.ID, err)
			}
		}
		for i, genre := range rec.Genres {
			if _, err := insGenre.ExecContext(ctx, pos, i, genre); err != nil {
				return fmt.Errorf("insert genre for %s: %w", rec.ID, err)
			}
		}
		for i, rel := range rec.Related {
			if _, err := insRelated.ExecContext(ctx, pos, i, string(rel)); err != nil {
				return fmt.Errorf("insert related for %s: %w", rec.ID, err)
			}
		}
	}

	meta := map[string]string{
		metaSavedAt: formatTime(time.Now()),
		metaRecords: strconv.Itoa(len(records)),
		metaOrigin:  origin,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Info("catalog snapshot saved", "path", s.path, "records", len(records), "origin", origin)
	return nil
}

// Load returns the stored records in their saved order. An empty database
// yields no records.
func (s *Store) Load(ctx context.Context) ([]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, id, title, studio, popularity, image_url FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	byPos := make(map[int]int)
	for rows.Next() {
		var (
			pos        int
			rec        catalog.Record
			popularity sql.NullInt64
		)
		if err := rows.Scan(&pos, &rec.ID, &rec.Title, &rec.Studio, &popularity, &rec.ImageURL); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if popularity.Valid {
			rec.Popularity = catalog.KnownRank(int(popularity.Int64))
		}
		byPos[pos] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, `SELECT record_position, alias FROM record_aliases ORDER BY record_position, ordinal`,
		func(pos int, v string) {
			if i, ok := byPos[pos]; ok {
				records[i].Aliases = append(records[i].Aliases, v)
			}
		}); err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	if err := s.loadChildren(ctx, `SELECT record_position, genre FROM record_genres ORDER BY record_position, ordinal`,
		func(pos int, v string) {
			if i, ok := byPos[pos]; ok {
				records[i].Genres = append(records[i].Genres, v)
			}
		}); err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}
	if err := s.loadChildren(ctx, `SELECT record_position, related_id FROM record_related ORDER BY record_position, ordinal`,
		func(pos int, v string) {
			if i, ok := byPos[pos]; ok {
				records[i].Related = append(records[i].Related, catalog.ID(v))
			}
		}); err != nil {
		return nil, fmt.Errorf("load related: %w", err)
	}

	return records, nil
}

func (s *Store) loadChildren(ctx context.Context, query string, add func(pos int, v string)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos int
			v   string
		)
		if err := rows.Scan(&pos, &v); err != nil {
			return err
		}
		add(pos, v)
	}
	return rows.Err()
}

// Info returns metadata about the stored snapshot.
func (s *Store) Info(ctx context.Context) (Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return Info{}, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Info{}, err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return Info{}, err
	}
	if len(meta) == 0 {
		return Info{}, ErrNoSnapshot
	}

	var info Info
	info.Origin = meta[metaOrigin]
	if info.Records, err = strconv.Atoi(meta[metaRecords]); err != nil {
		return Info{}, fmt.Errorf("parse record count: %w", err)
	}
	if info.SavedAt, err = parseTime(meta[metaSavedAt]); err != nil {
		return Info{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return info, nil
}
