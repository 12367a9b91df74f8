package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// IDSource supplies opaque unique identifiers.
type IDSource interface {
	NewID() string
}

// System is the wall clock in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

// Now returns the configured instant.
func (f Fixed) Now() time.Time {
	return f.At
}

// UUIDSource generates 32 character hex identifiers.
type UUIDSource struct{}

// NewID returns a random uuid without dashes.
func (UUIDSource) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sequence hands out predictable ids, for tests.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewID returns the next id in the sequence, zero padded to 32 chars.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%032d", s.next)
}
