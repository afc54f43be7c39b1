package watcher

import (
	"path/filepath"
	"time"
)

// DefaultSettleDelay is used when Options.SettleDelay is unset.
const DefaultSettleDelay = 2 * time.Second

// Options configures the file watcher behavior.
type Options struct {
	// SettleDelay is how long size and mtime must stay unchanged after the
	// last write before an event is emitted.
	SettleDelay time.Duration

	// Companions are suffixes appended to the watched file name whose
	// changes count as changes to the file itself, e.g. "-wal" for sqlite.
	Companions []string
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}

// names returns the base names that trigger events for path.
func (o *Options) names(path string) map[string]struct{} {
	base := filepath.Base(path)
	names := map[string]struct{}{base: {}}
	for _, suffix := range o.Companions {
		if suffix != "" {
			names[base+suffix] = struct{}{}
		}
	}
	return names
}
