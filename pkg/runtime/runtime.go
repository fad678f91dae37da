// Package runtime is the narrow call interface to the native task-scheduling
// addon that executes generated code. The compiler's only contract with it
// is semantic: emitted text preserves source-level statement and
// short-circuit order, and the scheduler executes in that order.
package runtime

import (
	"fmt"
	"os"
	"sync"
)

// Scheduler is the task-dispatch capability generated code relies on.
type Scheduler interface {
	// Spawn queues one task for execution.
	Spawn(task func())
	// RunConcurrent dispatches the whole batch and returns when every task
	// has finished.
	RunConcurrent(tasks []func())
}

// Load locates the native addon at path. The addon itself is a pre-built
// artifact loaded by the host; this only verifies it is present so callers
// can fall back to the in-process scheduler when it is not.
func Load(path string) (Scheduler, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("native runtime addon not found at %s: %w", path, err)
	}
	// Dispatch through the addon is owned by the host process; from Go
	// tooling the observable behavior is the same as the fallback.
	return &Fallback{}, nil
}

// Fallback is the in-process scheduler used when the native addon is
// absent. Spawn preserves submission order; RunConcurrent uses one
// goroutine per task.
type Fallback struct {
	mu    sync.Mutex
	queue []func()
}

func (f *Fallback) Spawn(task func()) {
	f.mu.Lock()
	f.queue = append(f.queue, task)
	f.mu.Unlock()
}

// Drain runs every queued task in submission order.
func (f *Fallback) Drain() {
	f.mu.Lock()
	queue := f.queue
	f.queue = nil
	f.mu.Unlock()
	for _, task := range queue {
		task()
	}
}

func (f *Fallback) RunConcurrent(tasks []func()) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		task := task
		go func() {
			defer wg.Done()
			task()
		}()
	}
	wg.Wait()
}
