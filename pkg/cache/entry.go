package cache

import (
	"encoding/json"
	"time"
)

// cacheEntry wraps cached data with metadata.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func encodeEntry(data []byte, ttl time.Duration) ([]byte, error) {
	entry := cacheEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return json.Marshal(entry)
}

// decodeEntry returns the payload and whether it is still valid. Corrupt
// and expired entries both count as invalid.
func decodeEntry(raw []byte) ([]byte, bool) {
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Data, true
}
