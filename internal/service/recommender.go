// Package service exposes the recommendation operations over the currently
// published graph snapshot.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/animerec/animerec-server/internal/catalog"
	domainerrors "github.com/animerec/animerec-server/internal/errors"
	"github.com/animerec/animerec-server/internal/graph"
	"github.com/animerec/animerec-server/internal/metrics"
	"github.com/animerec/animerec-server/internal/ranking"
)

// DefaultTopN is the alternatives list length when none is configured.
const DefaultTopN = 6

// Snapshot is one immutable build of the catalog.
type Snapshot struct {
	Graph   *graph.Graph
	Aliases *graph.AliasIndex
	Stats   graph.BuildStats
	BuildID string
	Source  string
	BuiltAt time.Time

	items map[catalog.ID]catalog.Record
}

// Item returns the display record for id.
func (s *Snapshot) Item(id catalog.ID) (catalog.Record, bool) {
	rec, ok := s.items[id]
	return rec, ok
}

// Recommendation is the closest item for a source plus ranked alternatives
// that exclude it.
type Recommendation struct {
	Source       catalog.ID   `json:"source"`
	Closest      catalog.ID   `json:"closest,omitempty"`
	Found        bool         `json:"found"`
	Alternatives []catalog.ID `json:"alternatives"`
	BuildID      string       `json:"build_id"`
}

// Options configures a Recommender.
type Options struct {
	// TopN is the alternatives list length used by Recommend.
	TopN  int
	Build graph.Options
}

// Recommender answers queries against the latest published snapshot.
// Queries never block on Reload; they see either the old or the new snapshot.
type Recommender struct {
	source catalog.Source
	opts   Options
	logger *slog.Logger

	current atomic.Pointer[Snapshot]
	reloads singleflight.Group
}

// New creates a Recommender. No snapshot is published until Reload succeeds.
func New(source catalog.Source, opts Options, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Build.Logger == nil {
		opts.Build.Logger = logger
	}
	return &Recommender{source: source, opts: opts, logger: logger}
}

// TopNDefault returns the configured alternatives length.
func (r *Recommender) TopNDefault() int {
	return r.opts.TopN
}

// Reload loads the source, builds a new graph and publishes it. Concurrent
// calls share one build. On failure the previous snapshot stays published.
func (r *Recommender) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := r.reloads.Do("reload", func() (any, error) {
		return r.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	snap, ok := v.(*Snapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected reload result %T", v)
	}
	if shared {
		r.logger.Debug("reload coalesced", "build_id", snap.BuildID)
	}
	return snap, nil
}

func (r *Recommender) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	records, err := r.source.Load(ctx)
	if err != nil {
		metrics.RecordBuild(time.Since(start), 0, 0, 0, err)
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "load catalog from %s", r.source.Describe())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, aliases, stats, err := graph.Build(records, r.opts.Build)
	if err != nil {
		metrics.RecordBuild(time.Since(start), 0, 0, 0, err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInvalidGraph, "build similarity graph")
	}

	items := make(map[catalog.ID]catalog.Record, g.Len())
	for _, rec := range records {
		if _, seen := items[rec.ID]; !seen && g.Has(rec.ID) {
			items[rec.ID] = rec
		}
	}

	snap := &Snapshot{
		Graph:   g,
		Aliases: aliases,
		Stats:   stats,
		BuildID: uuid.NewString(),
		Source:  r.source.Describe(),
		BuiltAt: time.Now().UTC(),
		items:   items,
	}
	r.current.Store(snap)

	elapsed := time.Since(start)
	metrics.RecordBuild(elapsed, stats.Vertices, stats.Edges, stats.Aliases, nil)
	r.logger.Info("snapshot published",
		"build_id", snap.BuildID,
		"source", snap.Source,
		"vertices", stats.Vertices,
		"edges", stats.Edges,
		"duration", elapsed,
	)
	return snap, nil
}

// Snapshot returns the published snapshot, or an UNAVAILABLE error before the
// first successful Reload.
func (r *Recommender) Snapshot() (*Snapshot, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, domainerrors.Unavailable("catalog not loaded")
	}
	return snap, nil
}

// BuildID returns the id of the published snapshot, or "" before the first
// successful Reload.
func (r *Recommender) BuildID() string {
	if snap := r.current.Load(); snap != nil {
		return snap.BuildID
	}
	return ""
}

// Resolve maps a user-supplied title to an item id. Matching is exact after
// trimming and case folding.
func (r *Recommender) Resolve(title string) (catalog.ID, error) {
	start := time.Now()
	snap, err := r.Snapshot()
	if err != nil {
		metrics.RecordQuery("resolve", metrics.OutcomeError, time.Since(start))
		return "", err
	}
	id, ok := snap.Aliases.Resolve(title)
	if !ok {
		metrics.RecordQuery("resolve", metrics.OutcomeNotFound, time.Since(start))
		return "", domainerrors.NotFoundf("no title matches %q", title)
	}
	metrics.RecordQuery("resolve", metrics.OutcomeOK, time.Since(start))
	return id, nil
}

// Item returns display metadata for id.
func (r *Recommender) Item(id catalog.ID) (catalog.Record, error) {
	snap, err := r.Snapshot()
	if err != nil {
		return catalog.Record{}, err
	}
	rec, ok := snap.Item(id)
	if !ok {
		return catalog.Record{}, domainerrors.NotFoundf("item %s not found", id)
	}
	return rec, nil
}

// lookup returns the snapshot after checking id is a vertex in it.
func (r *Recommender) lookup(id catalog.ID) (*Snapshot, error) {
	snap, err := r.Snapshot()
	if err != nil {
		return nil, err
	}
	if !snap.Graph.Has(id) {
		return nil, domainerrors.NotFoundf("item %s not found", id)
	}
	return snap, nil
}

// Closest returns the single best recommendation for id.
func (r *Recommender) Closest(id catalog.ID) (catalog.ID, error) {
	start := time.Now()
	snap, err := r.lookup(id)
	if err != nil {
		metrics.RecordQuery("closest", outcomeOf(err), time.Since(start))
		return "", err
	}
	best, ok := ranking.Closest(snap.Graph, id)
	if !ok {
		metrics.RecordQuery("closest", metrics.OutcomeEmpty, time.Since(start))
		return "", domainerrors.NoRecommendationf("no recommendation for %s", id)
	}
	metrics.RecordQuery("closest", metrics.OutcomeOK, time.Since(start))
	return best, nil
}

// TopN returns up to n ranked candidates for id.
func (r *Recommender) TopN(id catalog.ID, n int) ([]catalog.ID, error) {
	start := time.Now()
	if n < 0 {
		metrics.RecordQuery("top_n", metrics.OutcomeError, time.Since(start))
		return nil, domainerrors.Validationf("n must be non-negative, got %d", n)
	}
	snap, err := r.lookup(id)
	if err != nil {
		metrics.RecordQuery("top_n", outcomeOf(err), time.Since(start))
		return nil, err
	}
	ids := ranking.TopN(snap.Graph, id, n)
	metrics.RecordQuery("top_n", metrics.OutcomeOK, time.Since(start))
	return ids, nil
}

// Recommend returns the closest item and up to TopN alternatives excluding
// it. A missing closest item is reported through Found, not an error.
func (r *Recommender) Recommend(id catalog.ID) (Recommendation, error) {
	start := time.Now()
	snap, err := r.lookup(id)
	if err != nil {
		metrics.RecordQuery("recommend", outcomeOf(err), time.Since(start))
		return Recommendation{}, err
	}

	res := ranking.Recommend(snap.Graph, id, r.opts.TopN)
	outcome := metrics.OutcomeOK
	if !res.Found {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordQuery("recommend", outcome, time.Since(start))

	return Recommendation{
		Source:       id,
		Closest:      res.Closest,
		Found:        res.Found,
		Alternatives: res.Alternatives,
		BuildID:      snap.BuildID,
	}, nil
}

// Advance shows the next alternative for the session's current item.
func (r *Recommender) Advance(s *Session) (Outcome, error) {
	return s.Another(r, "")
}

func outcomeOf(err error) string {
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
