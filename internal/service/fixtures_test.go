package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/animerec/animerec-server/internal/catalog"
)

// testCatalog distances from "1": 2 at 1 (related), 4 and 5 at 2 (genre),
// 3 at 3 (studio). 5 is outside the popularity window; 6 is isolated.
func testCatalog() catalog.StaticSource {
	return catalog.StaticSource{
		{ID: "1", Title: "Alpha", Aliases: []string{"Alpha English"}, Genres: []string{"Action"}, Studio: "S1", Related: []catalog.ID{"2"}, Popularity: catalog.KnownRank(100)},
		{ID: "2", Title: "Beta", Genres: []string{"Action"}, Studio: "S2", Popularity: catalog.KnownRank(120)},
		{ID: "3", Title: "Gamma", Genres: []string{"Action"}, Studio: "S1", Popularity: catalog.KnownRank(150)},
		{ID: "4", Title: "Delta", Genres: []string{"Action", "Drama"}, Popularity: catalog.KnownRank(90)},
		{ID: "5", Title: "Epsilon", Genres: []string{"Action"}, Popularity: catalog.KnownRank(1000)},
		{ID: "6", Title: "Lonely", Popularity: catalog.KnownRank(50)},
	}
}

func newLoaded(t *testing.T) *Recommender {
	t.Helper()
	r := New(testCatalog(), Options{}, nil)
	_, err := r.Reload(context.Background())
	require.NoError(t, err)
	return r
}

// switchSource serves the primary catalog until failing is set.
type switchSource struct {
	records catalog.StaticSource
	failing atomic.Bool
	loads   atomic.Int32
}

func (s *switchSource) Load(ctx context.Context) ([]catalog.Record, error) {
	s.loads.Add(1)
	if s.failing.Load() {
		return nil, errors.New("snapshot unreadable")
	}
	return s.records.Load(ctx)
}

func (s *switchSource) Describe() string {
	return "switch"
}
