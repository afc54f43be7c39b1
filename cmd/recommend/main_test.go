package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/service"
)

func newTestRecommender(t *testing.T) *service.Recommender {
	t.Helper()
	rec := service.New(catalog.StaticSource{
		{ID: "1", Title: "Alpha", Genres: []string{"Action"}, Related: []catalog.ID{"2"}, Popularity: catalog.KnownRank(100)},
		{ID: "2", Title: "Beta", Genres: []string{"Action"}, Popularity: catalog.KnownRank(120)},
		{ID: "3", Title: "Gamma", Genres: []string{"Action"}, Popularity: catalog.KnownRank(150)},
		{ID: "6", Title: "Lonely", Popularity: catalog.KnownRank(50)},
	}, service.Options{}, nil)
	_, err := rec.Reload(context.Background())
	require.NoError(t, err)
	return rec
}

func TestRun_Conversation(t *testing.T) {
	rec := newTestRecommender(t)
	in := strings.NewReader("alpha\n:another\nunknown title\nlonely\n:another\n:reset\n:quit\nbeta\n")
	var out bytes.Buffer

	require.NoError(t, run(in, &out, rec))

	got := out.String()
	assert.Contains(t, got, "Because you liked Alpha, try: Beta")
	assert.Contains(t, got, "No anime with that title.")
	assert.Contains(t, got, "No recommendation for Lonely.")
	assert.Contains(t, got, "No more recommendations for Lonely.")
	assert.Contains(t, got, "Session cleared.")
	assert.NotContains(t, got, "Because you liked Beta", "input after quit is ignored")
}

func TestRun_AnotherBeforeSubmit(t *testing.T) {
	rec := newTestRecommender(t)
	var out bytes.Buffer

	require.NoError(t, run(strings.NewReader(":another\n"), &out, rec))
	assert.Contains(t, out.String(), "Error: ")
}

func TestRun_EndOfInput(t *testing.T) {
	rec := newTestRecommender(t)
	var out bytes.Buffer

	require.NoError(t, run(strings.NewReader(""), &out, rec))
	assert.True(t, strings.HasPrefix(out.String(), "Type a title to search."))
}

func TestRun_TitlesThatLookLikeCommands(t *testing.T) {
	rec := service.New(catalog.StaticSource{
		{ID: "11111", Title: "Another", Genres: []string{"Horror"}, Popularity: catalog.KnownRank(100)},
		{ID: "2", Title: "Shiki", Genres: []string{"Horror"}, Popularity: catalog.KnownRank(120)},
		{ID: "3", Title: "Reset", Genres: []string{"Horror"}, Popularity: catalog.KnownRank(130)},
	}, service.Options{}, nil)
	_, err := rec.Reload(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("Another\nreset\n:quit\n"), &out, rec))

	got := out.String()
	assert.Contains(t, got, "Because you liked Another, try: Shiki")
	assert.Contains(t, got, "Because you liked Reset, try: ")
	assert.NotContains(t, got, "Error:")
	assert.NotContains(t, got, "Session cleared.")
}

func TestRun_UnknownCommand(t *testing.T) {
	rec := newTestRecommender(t)
	var out bytes.Buffer

	require.NoError(t, run(strings.NewReader(":bogus\n"), &out, rec))
	assert.Contains(t, out.String(), `Unknown command ":bogus"`)
}
