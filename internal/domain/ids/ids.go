package ids

import (
	"crypto/rand"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

// lockedEntropy serialises access to the monotonic reader; ulid.Monotonic is
// not safe for concurrent use.
type lockedEntropy struct {
	mu     sync.Mutex
	reader io.Reader
}

func (e *lockedEntropy) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reader.Read(p)
}

var entropy = &lockedEntropy{reader: ulid.Monotonic(rand.Reader, 0)}

// NewULID generates a new ULID string. IDs minted within the same millisecond
// sort in creation order.
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustULID is NewULID for callers that cannot surface an error.
func MustULID() string {
	id, err := NewULID()
	if err != nil {
		panic(err)
	}
	return id
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}
