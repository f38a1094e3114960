package whatsapp

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxSeenMessages = 4096

// seenMessages remembers message ids for ttl so redelivered callbacks do not
// record the same delivery twice.
type seenMessages struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

func newSeenMessages(ttl time.Duration) *seenMessages {
	return &seenMessages{cache: expirable.NewLRU[string, struct{}](maxSeenMessages, nil, ttl)}
}

// markNew records id and reports whether it had not been seen within ttl.
func (s *seenMessages) markNew(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Peek(id); ok {
		return false
	}
	s.cache.Add(id, struct{}{})
	return true
}
