package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewScanID returns a base-36 capture time followed by a random suffix
func NewScanID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix
}

// collectionIDs hands out decimal epoch-millisecond ids, strictly increasing
// so two collections created in the same millisecond do not collide.
type collectionIDs struct {
	mu   sync.Mutex
	last int64
}

func (g *collectionIDs) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
