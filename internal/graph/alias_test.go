package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animerec/animerec-server/internal/catalog"
)

func TestAliasIndex_ResolvesEveryTitle(t *testing.T) {
	records := []catalog.Record{
		{ID: "1", Title: "Cowboy Bebop", Aliases: []string{"カウボーイビバップ", "  "}},
		{ID: "6", Title: "Trigun", Aliases: []string{"TRIGUN Maximum"}},
	}
	_, idx, stats := mustBuild(t, records)

	for _, r := range records {
		for _, title := range r.Titles() {
			if title == "  " {
				continue
			}
			id, ok := idx.Resolve(title)
			require.True(t, ok, title)
			assert.Equal(t, r.ID, id)
		}
	}
	assert.Equal(t, 4, stats.Aliases)
}

func TestAliasIndex_CaseAndWhitespaceInsensitive(t *testing.T) {
	_, idx, _ := mustBuild(t, []catalog.Record{{ID: "1", Title: "Cowboy Bebop"}})

	for _, q := range []string{"cowboy bebop", "  COWBOY BEBOP ", "Cowboy Bebop"} {
		id, ok := idx.Resolve(q)
		require.True(t, ok, q)
		assert.Equal(t, catalog.ID("1"), id)
	}

	_, ok := idx.Resolve("cowboy")
	assert.False(t, ok, "no prefix matching")
	_, ok = idx.Resolve("")
	assert.False(t, ok)
}

func TestAliasIndex_LastWriterWins(t *testing.T) {
	_, idx, stats := mustBuild(t, []catalog.Record{
		{ID: "1", Title: "Shared"},
		{ID: "2", Title: "Other", Aliases: []string{"shared"}},
	})

	id, ok := idx.Resolve("Shared")
	require.True(t, ok)
	assert.Equal(t, catalog.ID("2"), id)
	assert.Equal(t, 1, stats.AliasCollisions)
}
