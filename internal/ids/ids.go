package ids

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// randomUUID is swapped in tests to exercise the fallback path.
var randomUUID = uuid.NewRandom

var (
	fallbackMu      sync.Mutex
	fallbackEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID returns a process-wide unique opaque id.
//
// Prefers a random UUID; if the random source fails it falls back to a
// timestamp+random suffix (ULID) which is still unique within the process
// because the entropy source is monotonic.
func NewID() string {
	if id, err := randomUUID(); err == nil {
		return id.String()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), fallbackEntropy)
	if err != nil {
		// Monotonic entropy overflowed within one millisecond; reseed and retry once.
		fallbackEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
		id, err = ulid.New(ulid.Timestamp(time.Now()), fallbackEntropy)
		if err != nil {
			return fmt.Sprintf("%d-%08x", time.Now().UnixNano(), rand.Uint32())
		}
	}
	return strings.ToLower(id.String())
}

// InitialsOf returns up to two uppercase initials (first and last token), or "?" for blank names.
func InitialsOf(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "?"
	}
	out := firstRuneUpper(parts[0])
	if len(parts) > 1 {
		out += firstRuneUpper(parts[len(parts)-1])
	}
	return out
}

func firstRuneUpper(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
