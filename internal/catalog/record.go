// Package catalog defines the normalized catalog records the recommender is built from,
// plus the ingestion adapters that produce them.
package catalog

import "strings"

// ID identifies a catalog item. It is opaque: callers must not infer ordering or
// structure from it beyond equality and the lexical order used for tie-breaking.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// Record is a normalized catalog item.
type Record struct {
	ID         ID       `json:"id" validate:"required,max=64"`
	Title      string   `json:"title" validate:"required,max=512"`
	Aliases    []string `json:"aliases,omitempty" validate:"dive,max=512"`
	Genres     []string `json:"genres,omitempty" validate:"dive,required"`
	Studio     string   `json:"studio,omitempty"`
	Related    []ID     `json:"related,omitempty" validate:"dive,required"`
	Popularity Rank     `json:"popularity"`
	ImageURL   string   `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Titles returns the canonical title followed by every alias.
func (r *Record) Titles() []string {
	titles := make([]string, 0, len(r.Aliases)+1)
	titles = append(titles, r.Title)
	return append(titles, r.Aliases...)
}

// HasStudio reports whether the record names a studio.
func (r *Record) HasStudio() bool {
	return strings.TrimSpace(r.Studio) != ""
}
