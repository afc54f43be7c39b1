package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/animerec/animerec-server/internal/catalog"
)

// Ingestion problems reported in strict mode.
var (
	ErrStrictIngestion  = errors.New("graph: strict ingestion failed")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrDanglingRelation = errors.New("related id not in catalog")
	ErrSelfRelation     = errors.New("item relates to itself")
	ErrInvalidRecord    = errors.New("invalid record")
)

// maxReportedProblems caps the per-record errors joined into a strict failure.
const maxReportedProblems = 20

// RecordValidator checks a record before it is admitted in strict mode.
type RecordValidator interface {
	Validate(s any) error
}

// Options controls Build.
type Options struct {
	// Strict turns duplicate ids, dangling relations, self relations and
	// invalid records into a build error instead of counting them.
	Strict bool

	// Validator is applied to every record in strict mode. Optional.
	Validator RecordValidator

	Logger *slog.Logger
}

// BuildStats summarizes what Build admitted and what it skipped.
type BuildStats struct {
	Records           int `json:"records"`
	Vertices          int `json:"vertices"`
	Edges             int `json:"edges"`
	Aliases           int `json:"aliases"`
	DuplicateIDs      int `json:"duplicate_ids"`
	DanglingRelations int `json:"dangling_relations"`
	SelfRelations     int `json:"self_relations"`
	AliasCollisions   int `json:"alias_collisions"`
	InvalidRecords    int `json:"invalid_records"`
}

// group collects vertex ids sharing an attribute, in first-seen order.
type group struct {
	order   []string
	members map[string][]catalog.ID
}

func newGroup() *group {
	return &group{members: make(map[string][]catalog.ID)}
}

func (g *group) add(key string, id catalog.ID) {
	if _, ok := g.members[key]; !ok {
		g.order = append(g.order, key)
	}
	g.members[key] = append(g.members[key], id)
}

// Build constructs the similarity graph and alias index from records.
//
// Edges are applied in three passes: genre (weight 2), then studio (weight 3),
// then related (weight 1). A later pass overwrites the weight of a pair an
// earlier pass connected, so related beats studio beats genre.
//
// A record whose id is already registered still adds its titles to the alias
// index, but its popularity, genres, studio and relations are ignored.
func Build(records []catalog.Record, opts Options) (*Graph, *AliasIndex, BuildStats, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var (
		stats    = BuildStats{Records: len(records)}
		problems []error
		b        = NewBuilder()
		aliases  = newAliasIndex()
		admitted = make([]*catalog.Record, 0, len(records))
		genres   = newGroup()
		studios  = newGroup()
	)

	report := func(err error) {
		problems = append(problems, err)
	}

	for i := range records {
		rec := &records[i]

		if strings.TrimSpace(string(rec.ID)) == "" {
			stats.InvalidRecords++
			report(fmt.Errorf("%w: row %d has no id", ErrInvalidRecord, i))
			continue
		}
		if opts.Strict && opts.Validator != nil {
			if err := opts.Validator.Validate(rec); err != nil {
				stats.InvalidRecords++
				report(fmt.Errorf("%w %s: %w", ErrInvalidRecord, rec.ID, err))
				continue
			}
		}

		for _, title := range rec.Titles() {
			if aliases.register(title, rec.ID) {
				stats.AliasCollisions++
			}
		}

		if !b.AddVertex(rec.ID, rec.Popularity) {
			stats.DuplicateIDs++
			report(fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID))
			continue
		}
		admitted = append(admitted, rec)

		seen := make(map[string]struct{}, len(rec.Genres))
		for _, genre := range rec.Genres {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				continue
			}
			if _, dup := seen[genre]; dup {
				continue
			}
			seen[genre] = struct{}{}
			genres.add(genre, rec.ID)
		}
		if rec.HasStudio() {
			studios.add(strings.TrimSpace(rec.Studio), rec.ID)
		}
	}

	if err := connectGroups(b, genres, WeightGenre); err != nil {
		return nil, nil, stats, err
	}
	if err := connectGroups(b, studios, WeightStudio); err != nil {
		return nil, nil, stats, err
	}

	for _, rec := range admitted {
		for _, rel := range rec.Related {
			switch {
			case rel == rec.ID:
				stats.SelfRelations++
				report(fmt.Errorf("%w: %s", ErrSelfRelation, rec.ID))
			case !b.Has(rel):
				stats.DanglingRelations++
				report(fmt.Errorf("%w: %s -> %s", ErrDanglingRelation, rec.ID, rel))
			default:
				if _, err := b.AddEdge(rec.ID, rel, WeightRelated); err != nil {
					return nil, nil, stats, err
				}
			}
		}
	}

	if opts.Strict && len(problems) > 0 {
		errs := []error{ErrStrictIngestion}
		if len(problems) > maxReportedProblems {
			errs = append(errs, problems[:maxReportedProblems]...)
			errs = append(errs, fmt.Errorf("and %d more", len(problems)-maxReportedProblems))
		} else {
			errs = append(errs, problems...)
		}
		return nil, nil, stats, errors.Join(errs...)
	}

	g := b.Freeze()
	stats.Vertices = g.Len()
	stats.Edges = g.EdgeCount()
	stats.Aliases = aliases.Len()

	log.Info("similarity graph built",
		"records", stats.Records,
		"vertices", stats.Vertices,
		"edges", stats.Edges,
		"aliases", stats.Aliases,
		"duplicate_ids", stats.DuplicateIDs,
		"dangling_relations", stats.DanglingRelations,
		"alias_collisions", stats.AliasCollisions,
	)

	return g, aliases, stats, nil
}

// connectGroups links every pair of members within each group.
func connectGroups(b *Builder, g *group, weight int) error {
	for _, key := range g.order {
		members := g.members[key]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				if _, err := b.AddEdge(members[i], members[j], weight); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
