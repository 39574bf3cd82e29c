// Package lifecycle coordinates startup hooks, shutdown hooks, and readiness
// across the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem can serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks concurrently, gates readiness on them and
// on every registered check, and cancels its context to trigger shutdown hooks.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	started  atomic.Bool

	mu     sync.RWMutex
	checks map[string]ReadinessChecker
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: map[string]ReadinessChecker{},
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine; WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown runs fn in its own goroutine immediately. fn should block on
// <-Context().Done() before releasing anything; Shutdown waits for it.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

// Check registers checker under name, replacing any earlier one.
func (c *Coordinator) Check(name string, checker ReadinessChecker) {
	c.mu.Lock()
	c.checks[name] = checker
	c.mu.Unlock()
}

// Ready is true once startup has finished and every check passes.
func (c *Coordinator) Ready() bool {
	return c.started.Load() && len(c.NotReady()) == 0
}

// NotReady lists the failing checks in name order.
func (c *Coordinator) NotReady() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pending []string
	for _, name := range slices.Sorted(maps.Keys(c.checks)) {
		if !c.checks[name].Ready() {
			pending = append(pending, name)
		}
	}
	return pending
}

func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.started.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
