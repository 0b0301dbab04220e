// Package jobmgr runs named background jobs: one job per name at a time,
// all cancelled together on shutdown.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrRunning is returned by Start when a job with the same name is active.
var ErrRunning = errors.New("job is already running")

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]context.CancelFunc
	wg     sync.WaitGroup
	parent context.Context
	log    *zap.Logger
}

// NewManager derives every job context from parent. logger may be nil.
func NewManager(parent context.Context, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		jobs:   make(map[string]context.CancelFunc),
		parent: parent,
		log:    logger,
	}
}

// Start runs runner in its own goroutine. The job is forgotten once runner
// returns, so the same name can be started again.
func (m *Manager) Start(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("%s: %w", name, ErrRunning)
	}
	ctx, cancel := context.WithCancel(m.parent)
	m.jobs[name] = cancel
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer m.finish(name, cancel)

		m.log.Debug("Job started", zap.String("job", name))
		if err := runner(ctx); err != nil {
			m.log.Warn("Job failed", zap.String("job", name), zap.Error(err))
			return
		}
		m.log.Debug("Job done", zap.String("job", name))
	}()
	return nil
}

func (m *Manager) finish(name string, cancel context.CancelFunc) {
	cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, name)
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	cancel()
	return nil
}

// Shutdown cancels every job and waits for them to return.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, cancel := range m.jobs {
		cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// List returns the names of active jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}
