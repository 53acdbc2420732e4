package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_ShouldRefetch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute
	data := json.RawMessage(`[]`)

	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"never fetched", Entry{}, true},
		{"fresh", Entry{Data: data, LastFetchedAt: now.Add(-time.Minute)}, false},
		{"expired", Entry{Data: data, LastFetchedAt: now.Add(-ttl)}, true},
		{"last load failed", Entry{Data: data, LastFetchedAt: now.Add(-time.Minute), Error: "timeout"}, true},
		{"loading elsewhere", Entry{Data: data, LastFetchedAt: now.Add(-time.Hour), Loading: true, LoadingSince: now.Add(-time.Second)}, false},
		{"abandoned load", Entry{Data: data, LastFetchedAt: now.Add(-time.Hour), Loading: true, LoadingSince: now.Add(-ttl)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.ShouldRefetch(now, ttl))
		})
	}
}

func TestEntry_HasData(t *testing.T) {
	assert.False(t, Entry{}.HasData())
	assert.True(t, Entry{Data: json.RawMessage(`{}`)}.HasData())
}
