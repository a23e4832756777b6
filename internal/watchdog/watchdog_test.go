package watchdog

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"heliscene/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSpawnRecoversPanic(t *testing.T) {
	exit := <-Spawn(func() error { panic("render exploded") })
	assert.True(t, exit.Abnormal())
	assert.Equal(t, "render exploded", exit.Panic)
	assert.NotEmpty(t, exit.Stack)
	assert.Contains(t, exit.String(), "render exploded")
}

func TestSpawnReportsError(t *testing.T) {
	boom := errors.New("shader link failed")
	exit := <-Spawn(func() error { return boom })
	assert.True(t, exit.Abnormal())
	assert.ErrorIs(t, exit.Err, boom)
}

func TestSpawnCleanReturn(t *testing.T) {
	done := Spawn(func() error { return nil })
	exit := <-done
	assert.False(t, exit.Abnormal())
	assert.Equal(t, "ok", exit.String())
	_, open := <-done
	assert.False(t, open)
}

func TestWatchFlipsHealthOnPanic(t *testing.T) {
	s := shared.New(800, 600)
	var wakes atomic.Int32
	w := &Watcher{Health: &s.Health, Logger: quietLogger(), Wake: func() { wakes.Add(1) }}

	exit := <-w.Go(func() error { panic("boom") })
	require.True(t, exit.Abnormal())
	assert.Equal(t, int32(1), wakes.Load())

	for i := 0; i < 5; i++ {
		ok, err := s.Health.Healthy()
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestWatchIsOneShot(t *testing.T) {
	s := shared.New(800, 600)
	w := &Watcher{Health: &s.Health, Logger: quietLogger()}

	<-w.Go(func() error { panic("first") })
	<-w.Go(func() error { panic("second") })
	<-w.Go(func() error { return nil })

	ok, err := s.Health.Healthy()
	require.NoError(t, err)
	assert.False(t, ok)

	changed, err := s.Health.MarkUnhealthy()
	require.NoError(t, err)
	assert.False(t, changed, "flag must already be false")
}

func TestWatchLeavesHealthOnCleanExit(t *testing.T) {
	s := shared.New(800, 600)
	woke := false
	w := &Watcher{Health: &s.Health, Logger: quietLogger(), Wake: func() { woke = true }}

	exit := <-w.Go(func() error { return nil })
	assert.False(t, exit.Abnormal())
	assert.False(t, woke)

	ok, err := s.Health.Healthy()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWatchClosedChannel(t *testing.T) {
	s := shared.New(800, 600)
	done := make(chan Exit)
	close(done)
	w := &Watcher{Health: &s.Health}
	assert.False(t, w.Watch(done).Abnormal())
	ok, _ := s.Health.Healthy()
	assert.True(t, ok)
}
