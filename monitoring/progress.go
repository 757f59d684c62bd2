package monitoring

import (
	"sync"
	"time"
)

// ProgressState is a copy of the counters of a progress bar at one moment.
type ProgressState struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	Failed     uint64    `json:"failed"`
}

// A ProgressBar tracks how many accesses of a replay are done. It is updated
// by the replaying goroutine and read by the HTTP server.
type ProgressBar struct {
	lock  sync.Mutex
	state ProgressState
}

func newProgressBar(id, name string, total uint64) *ProgressBar {
	return &ProgressBar{
		state: ProgressState{
			ID:        id,
			Name:      name,
			StartTime: time.Now(),
			Total:     total,
		},
	}
}

// State returns a copy of the counters.
func (b *ProgressBar) State() ProgressState {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.state
}

// IncrementInProgress marks accesses as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.state.InProgress += amount
}

// IncrementFinished counts accesses as done without having started them.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.state.Finished += amount
}

// MoveInProgressToFinished moves started accesses to the finished count.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.state.InProgress -= amount
	b.state.Finished += amount
}

// MoveInProgressToFailed moves started accesses to the failed count.
func (b *ProgressBar) MoveInProgressToFailed(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.state.InProgress -= amount
	b.state.Failed += amount
}
