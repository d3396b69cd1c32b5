package keyring

import (
	"errors"
	"strings"
)

// ErrEmpty is returned when a ring is built without any usable key.
var ErrEmpty = errors.New("no API keys configured")

// Ring hands out API keys round-robin. It is not safe for concurrent use;
// each lookup pipeline owns its own ring.
type Ring struct {
	keys []string
	next int
}

// New creates a ring from keys. Blank entries are dropped and surrounding
// whitespace is trimmed.
func New(keys []string) (*Ring, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		cleaned = append(cleaned, k)
	}

	if len(cleaned) == 0 {
		return nil, ErrEmpty
	}

	return &Ring{keys: cleaned}, nil
}

// Next returns the key under the cursor and advances it, wrapping after the
// last key.
func (r *Ring) Next() string {
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key
}

// Len returns the pool size.
func (r *Ring) Len() int {
	return len(r.keys)
}
