package cache

import (
	"encoding/json"
	"time"
)

// Entry is the cached state of one public listing.
type Entry struct {
	Data          json.RawMessage `json:"data,omitempty"`
	Loading       bool            `json:"loading"`
	LoadingSince  time.Time       `json:"loading_since,omitempty"`
	Error         string          `json:"error,omitempty"`
	LastFetchedAt time.Time       `json:"last_fetched_at"`
}

// HasData reports whether the entry carries a previously fetched payload.
func (e Entry) HasData() bool {
	return len(e.Data) > 0
}

// ShouldRefetch reports whether the entry must be reloaded at now. A load that
// started less than ttl ago suppresses refetching; a load older than that is
// treated as abandoned.
func (e Entry) ShouldRefetch(now time.Time, ttl time.Duration) bool {
	if e.Loading && now.Sub(e.LoadingSince) < ttl {
		return false
	}
	if e.LastFetchedAt.IsZero() || e.Error != "" {
		return true
	}
	return now.Sub(e.LastFetchedAt) >= ttl
}

// Target names a cache key together with the loader that fills it.
type Target struct {
	Key  string
	Load Loader
}
