package news

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// DedupKeyLength is the number of hex characters kept from the link digest.
const DedupKeyLength = 12

// DedupKey derives the set-membership key of a link.
func DedupKey(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])[:DedupKeyLength]
}

// SeenSet records dedup keys for one fetch run. It is safe for concurrent use.
type SeenSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[string]struct{})}
}

func (s *SeenSet) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *SeenSet) MarkSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// Add marks key as seen and reports whether it was new.
func (s *SeenSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
