package runtime

import (
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestFallbackDrainPreservesOrder(t *testing.T) {
	f := &Fallback{}
	var got []int
	for i := 1; i <= 5; i++ {
		i := i
		f.Spawn(func() { got = append(got, i) })
	}
	f.Drain()
	if !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("expected submission order, got %v", got)
	}
}

func TestFallbackDrainEmptiesQueue(t *testing.T) {
	f := &Fallback{}
	var runs int
	f.Spawn(func() { runs++ })
	f.Drain()
	f.Drain()
	if runs != 1 {
		t.Errorf("expected each task to run once, got %d", runs)
	}
}

func TestRunConcurrentWaitsForAll(t *testing.T) {
	f := &Fallback{}
	var done atomic.Int64
	tasks := make([]func(), 10)
	for i := range tasks {
		tasks[i] = func() { done.Add(1) }
	}
	f.RunConcurrent(tasks)
	if done.Load() != 10 {
		t.Errorf("expected all 10 tasks finished, got %d", done.Load())
	}
}

func TestLoadMissingAddon(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.node")); err == nil {
		t.Error("expected an error for a missing addon")
	}
}

func TestLoadPresentAddon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tova_runtime.node")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	sched, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sched == nil {
		t.Fatal("expected a scheduler")
	}
}
