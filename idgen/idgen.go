// ABOUTME: Type-prefixed entity ID generation
// ABOUTME: ULID suffix keeps IDs sortable by creation time and collision-free
package idgen

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes of the entity ID namespaces. Pre-existing rows carry the same
// prefixes (with a millisecond-timestamp suffix), so lookups that only check
// the prefix keep working across both generations of IDs.
const (
	PrefixOpportunity  = "OPP"
	PrefixCompany      = "COM"
	PrefixContact      = "CON"
	PrefixInteraction  = "INT"
	PrefixLink         = "LNK"
	PrefixEventLog     = "EVT"
	PrefixAnnouncement = "ANNC"
	PrefixWeekly       = "WB-"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a fresh entity ID with the given type prefix. IDs are generated
// client-side and never checked for uniqueness against the store; the ULID
// suffix makes a collision practically impossible even under concurrent
// creation, unlike the timestamp scheme it replaces.
func New(prefix string) string {
	mu.Lock()
	defer mu.Unlock()
	return prefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
