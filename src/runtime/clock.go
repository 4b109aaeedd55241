package runtime

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Clock that only moves when told to
type FixedClock struct {
	mtx sync.RWMutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (self *FixedClock) Now() time.Time {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.now
}

func (self *FixedClock) Set(now time.Time) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.now = now
}

func (self *FixedClock) Advance(d time.Duration) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.now = self.now.Add(d)
}
