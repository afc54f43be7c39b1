package graph

import (
	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/normalize"
)

// AliasIndex maps normalized titles to item ids. It is read-only once Build
// returns it.
type AliasIndex struct {
	titles map[string]catalog.ID
}

func newAliasIndex() *AliasIndex {
	return &AliasIndex{titles: make(map[string]catalog.ID)}
}

// register stores title for id. The last writer wins; it reports whether an
// existing entry for a different id was replaced.
func (a *AliasIndex) register(title string, id catalog.ID) (collided bool) {
	key := normalize.Title(title)
	if key == "" {
		return false
	}
	prev, exists := a.titles[key]
	a.titles[key] = id
	return exists && prev != id
}

// Resolve looks up a title after trimming and case folding. Matching is exact.
func (a *AliasIndex) Resolve(title string) (catalog.ID, bool) {
	key := normalize.Title(title)
	if key == "" {
		return "", false
	}
	id, ok := a.titles[key]
	return id, ok
}

// Len returns the number of distinct normalized titles.
func (a *AliasIndex) Len() int {
	return len(a.titles)
}
