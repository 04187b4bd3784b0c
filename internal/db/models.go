package db

import (
	"encoding/json"
	"time"
)

// CachedSearch is one stored search result set.
type CachedSearch struct {
	Key       string
	Payload   json.RawMessage
	FetchedAt time.Time
}
