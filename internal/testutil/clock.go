package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"scout/internal/recon"
)

// SnapshotEpoch formats as the snapshot id prefix 20240115T103000Z.
var SnapshotEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// Clock only moves when advanced.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

var _ recon.Clock = (*Clock)(nil)

// FixedClock returns a Clock at SnapshotEpoch.
func FixedClock() *Clock {
	return &Clock{now: SnapshotEpoch}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// IDSequence generates "id-1", "id-2", ...
type IDSequence struct {
	n atomic.Int64
}

var _ recon.IDGenerator = (*IDSequence)(nil)

func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

func (s *IDSequence) New() string {
	return fmt.Sprintf("id-%d", s.n.Add(1))
}
