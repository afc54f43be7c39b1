package catalog

import "context"

// Source supplies a catalog snapshot. Implementations return records in a
// stable order; the graph builder is order-sensitive only for duplicate ids
// and alias collisions.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
	Describe() string
}

// StaticSource serves a fixed slice of records. Useful for tests and for
// callers that already hold records in memory.
type StaticSource []Record

// Load implements Source.
func (s StaticSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// Describe implements Source.
func (s StaticSource) Describe() string {
	return "static"
}
