package service

import (
	"sync"
	"time"
)

// RevocationList remembers logged-out session ids until every token that
// could carry them has expired.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time // sid -> revoked until
}

// NewRevocationList returns an empty list.
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke marks sid as revoked until the given time.
func (l *RevocationList) Revoke(sid string, until time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.entries[sid]; ok && cur.After(until) {
		return
	}
	l.entries[sid] = until
}

// IsRevoked reports whether sid is revoked at now.
func (l *RevocationList) IsRevoked(sid string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.entries[sid]
	return ok && now.Before(until)
}

// Prune drops entries whose window has passed and returns how many it removed.
func (l *RevocationList) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for sid, until := range l.entries {
		if !now.Before(until) {
			delete(l.entries, sid)
			n++
		}
	}
	return n
}

func (l *RevocationList) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
