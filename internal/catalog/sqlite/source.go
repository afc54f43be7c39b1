package sqlite

import (
	"context"
	"log/slog"

	"github.com/animerec/animerec-server/internal/catalog"
)

// File is a catalog.Source backed by a snapshot database. Each Load opens the
// file, reads it and closes it again, so a snapshot replaced on disk is picked
// up by the next reload.
type File struct {
	Path   string
	Logger *slog.Logger
}

var _ catalog.Source = (*File)(nil)

// Load implements catalog.Source.
func (f *File) Load(ctx context.Context) ([]catalog.Record, error) {
	s, err := Open(f.Path, f.Logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// Describe implements catalog.Source.
func (f *File) Describe() string {
	return "sqlite:" + f.Path
}
