// Package idx generates the ULID identifiers used for users, movies,
// sessions and request ids.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty placeholder ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a lexicographically sortable ID stamped with the current time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t. Monotonic within the same millisecond.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// Parse validates s as a canonical ULID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp, or the zero time for invalid IDs.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
