package gotracker

import (
	"sort"
	"sync"
)

// TaskTracker keeps count of the region tasks a fan-out started and finished.  A
// driver checks it after its pool drained: a task still open at that point ran past
// the wait, usually because it ignored its context.
type TaskTracker interface {
	// Start marks a task for operation in region as running.
	Start(operation, region string)
	// Done marks one running task for operation in region as finished.
	Done(operation, region string)
	// Active lists the running tasks as "operation[region]", sorted.
	Active() []string
	// AllDone reports whether every started task was marked done.
	AllDone() bool
	// Started is the number of tasks started so far.
	Started() int
}

type taskKey struct {
	operation string
	region    string
}

func (k taskKey) String() string {
	return k.operation + "[" + k.region + "]"
}

type tracker struct {
	mu       sync.Mutex
	running  map[taskKey]int
	started  int
	finished int
}

func NewTracker() TaskTracker {
	return &tracker{
		running: make(map[taskKey]int),
	}
}

func (t *tracker) Start(operation, region string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running[taskKey{operation, region}]++
	t.started++
}

// Done without a matching Start is counted, so AllDone stays false.
func (t *tracker) Done(operation, region string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := taskKey{operation, region}
	t.running[k]--
	t.finished++
	if t.running[k] == 0 {
		delete(t.running, k)
	}
}

func (t *tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var active []string
	for k, count := range t.running {
		if count > 0 {
			active = append(active, k.String())
		}
	}
	sort.Strings(active)
	return active
}

func (t *tracker) AllDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started != t.finished {
		return false
	}
	for _, count := range t.running {
		if count != 0 {
			return false
		}
	}
	return true
}

func (t *tracker) Started() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}
