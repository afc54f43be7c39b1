package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Rank is a popularity rank: a positive integer where lower means more popular,
// or Unknown when the source value was missing or unparseable.
//
// Unknown sorts after every known rank, and any difference involving Unknown is
// treated as infinite.
type Rank struct {
	value int
	known bool
}

// Unknown is the rank of an item with no usable popularity data.
var Unknown = Rank{}

// KnownRank returns a known rank. Values below 1 yield Unknown.
func KnownRank(n int) Rank {
	if n < 1 {
		return Unknown
	}
	return Rank{value: n, known: true}
}

// ParseRank converts raw popularity text into a Rank. Anything that is not a
// positive integer becomes Unknown.
func ParseRank(raw string) Rank {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Some exports write integral ranks as "123.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return Unknown
		}
		n = int(f)
	}
	return KnownRank(n)
}

// Known reports whether the rank carries a value.
func (r Rank) Known() bool {
	return r.known
}

// Value returns the rank value and whether it is known.
func (r Rank) Value() (int, bool) {
	return r.value, r.known
}

// Less reports whether r ranks strictly more popular than o.
func (r Rank) Less(o Rank) bool {
	switch {
	case r.known && o.known:
		return r.value < o.value
	case r.known:
		return true
	default:
		return false
	}
}

// Diff returns |r - o| and true when both ranks are known. When either side is
// Unknown the difference is infinite and ok is false.
func (r Rank) Diff(o Rank) (diff int, ok bool) {
	if !r.known || !o.known {
		return 0, false
	}
	d := r.value - o.value
	if d < 0 {
		d = -d
	}
	return d, true
}

// Within reports whether the difference between r and o is at most window.
func (r Rank) Within(o Rank, window int) bool {
	d, ok := r.Diff(o)
	return ok && d <= window
}

// String implements fmt.Stringer.
func (r Rank) String() string {
	if !r.known {
		return "unknown"
	}
	return strconv.Itoa(r.value)
}

// MarshalJSON encodes a known rank as a number and Unknown as null.
func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON decodes a number or null.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*r = Unknown
		return nil
	}
	*r = KnownRank(*v)
	return nil
}
