package feed

import "time"

// Refreshed is emitted after a feed was loaded and written to the cache.
type Refreshed struct {
	itemCount int
	timestamp time.Time
}

func NewRefreshed(itemCount int, timestamp time.Time) Refreshed {
	return Refreshed{itemCount: itemCount, timestamp: timestamp}
}

func (r Refreshed) ItemCount() int {
	return r.itemCount
}

func (r Refreshed) Timestamp() time.Time {
	return r.timestamp
}
