package jobmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStartRejectsDuplicates(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(context.Background(), nil)
	release := make(chan struct{})
	require.NoError(t, m.Start("commands:g1", func(ctx context.Context) error {
		<-release
		return nil
	}))

	assert.ErrorIs(t, m.Start("commands:g1", func(context.Context) error { return nil }), ErrRunning)
	assert.Equal(t, "Running jobs: commands:g1", m.Status())

	close(release)
	require.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, "No jobs are running.", m.Status())
	require.NoError(t, m.Start("commands:g1", func(context.Context) error { return errors.New("again") }))
	m.Shutdown()
}

func TestShutdownCancelsJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(context.Background(), nil)
	stopped := make(chan error, 2)
	for _, name := range []string{"a", "b"} {
		require.NoError(t, m.Start(name, func(ctx context.Context) error {
			<-ctx.Done()
			stopped <- ctx.Err()
			return ctx.Err()
		}))
	}
	assert.Equal(t, []string{"a", "b"}, m.List())

	m.Shutdown()
	assert.ErrorIs(t, <-stopped, context.Canceled)
	assert.ErrorIs(t, <-stopped, context.Canceled)
	assert.Empty(t, m.List())
}

func TestStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(context.Background(), nil)
	require.NoError(t, m.Start("a", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	require.NoError(t, m.Stop("a"))
	m.Shutdown()
	assert.Error(t, m.Stop("a"))
}
