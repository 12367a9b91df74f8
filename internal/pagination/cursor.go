// Package pagination holds the continuation key handed to clients by
// paginated pass queries. A cursor carries only the position of the last
// pass on a page; the owner is always supplied by the server.
package pagination

import (
	"time"

	"github.com/movementpass/public-api/internal/domain"
)

// DefaultPageSize is the page size used when the caller does not ask for one.
const DefaultPageSize = 25

// timeLayout is fixed width so cursors compare and print predictably.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Cursor is the client-visible continuation key.
type Cursor struct {
	ID    string `json:"id" query:"id"`
	EndAt string `json:"endAt" query:"endAt"`
}

// Keyset is a decoded cursor position in the (endAt, id) index.
type Keyset struct {
	EndAt time.Time
	ID    string
}

// After builds the cursor pointing just past the given pass.
func After(p domain.Pass) *Cursor {
	return &Cursor{ID: p.ID, EndAt: FormatTime(p.EndAt)}
}

// Keyset decodes the cursor. ok is false when the cursor is absent or
// malformed, in which case the query starts from the first page.
func (c *Cursor) Keyset() (Keyset, bool) {
	if c == nil || c.ID == "" || c.EndAt == "" {
		return Keyset{}, false
	}
	endAt, err := time.Parse(time.RFC3339Nano, c.EndAt)
	if err != nil {
		return Keyset{}, false
	}
	return Keyset{EndAt: endAt.UTC(), ID: c.ID}, true
}

// Includes reports whether the pass sorts strictly after the keyset position in
// descending (endAt, id) order.
func (k Keyset) Includes(p domain.Pass) bool {
	if p.EndAt.Equal(k.EndAt) {
		return p.ID < k.ID
	}
	return p.EndAt.Before(k.EndAt)
}

// FormatTime renders a timestamp the way cursors carry it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
