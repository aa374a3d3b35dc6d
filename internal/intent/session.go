package intent

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"cadpilot/internal/units"
)

// DefaultConfidenceThreshold is the floor below which a parseable intent is
// still downgraded to a clarification.
const DefaultConfidenceThreshold = 0.5

const defaultConfirmedCacheSize = 256

// Session is the explicitly owned per-conversation context: the active
// display unit, the confidence threshold and a bounded most-recent-wins
// cache of exactly confirmed input texts. Never a process-wide singleton.
type Session struct {
	ContextUnit units.Unit
	Threshold   float64
	confirmed   *lru.Cache[string, time.Time]
}

// NewSession builds a session context. cacheSize <= 0 applies the default.
func NewSession(contextUnit units.Unit, threshold float64, cacheSize int) *Session {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if cacheSize <= 0 {
		cacheSize = defaultConfirmedCacheSize
	}
	cache, _ := lru.New[string, time.Time](cacheSize)
	return &Session{
		ContextUnit: contextUnit,
		Threshold:   threshold,
		confirmed:   cache,
	}
}

func normalizeInput(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Confirm records that the given input text was explicitly confirmed by the
// user. Oldest entries are evicted first.
func (s *Session) Confirm(text string) {
	if s == nil || strings.TrimSpace(text) == "" {
		return
	}
	s.confirmed.Add(normalizeInput(text), time.Now())
}

// IsConfirmed reports whether the exact input text was previously confirmed.
func (s *Session) IsConfirmed(text string) bool {
	if s == nil || strings.TrimSpace(text) == "" {
		return false
	}
	_, ok := s.confirmed.Get(normalizeInput(text))
	return ok
}
