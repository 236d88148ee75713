package syncqueue

import "time"

// Event is one "needs sync" notification. The network layer that consumes
// these lives outside this repository; the queue is just the boundary.
type Event struct {
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}
