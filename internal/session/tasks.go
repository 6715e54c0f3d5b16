package session

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// TaskSet tracks the background tasks owned by one session: the status
// refresher, the idle watchdog and any in-flight playlist expansions. Each
// task gets a cancellation context at spawn time and deregisters itself when
// it returns, so cancellation is cooperative rather than a second party
// deleting state out from under a running loop.
type TaskSet struct {
	mu     sync.Mutex
	tasks  map[string]context.CancelFunc
	closed bool
}

func NewTaskSet() *TaskSet {
	return &TaskSet{tasks: make(map[string]context.CancelFunc)}
}

// Start runs the task in its own goroutine. Returns an error if the set was
// already shut down or a task with the same name is still running. A non-nil
// error from the runner is logged, not propagated.
func (t *TaskSet) Start(name string, runner func(ctx context.Context) error) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("task set is shut down, not starting %q", name)
	}
	if _, exists := t.tasks[name]; exists {
		t.mu.Unlock()
		return fmt.Errorf("task %q is already running", name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.tasks[name] = cancel
	t.mu.Unlock()

	go func() {
		defer cancel()
		if err := runner(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[WARN] task %s ended with error: %v", name, err)
		}
		t.remove(name)
	}()

	return nil
}

// StopAll cancels every outstanding task and refuses new ones. Safe to call
// more than once; cancellation is best effort, each loop observes it at its
// next suspension point.
func (t *TaskSet) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for name, cancel := range t.tasks {
		cancel()
		delete(t.tasks, name)
	}
}

// Len reports how many tasks are currently registered.
func (t *TaskSet) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Names returns the registered task names.
func (t *TaskSet) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.tasks))
	for name := range t.tasks {
		out = append(out, name)
	}
	return out
}

func (t *TaskSet) remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, name)
}
