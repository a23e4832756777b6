package events

import (
	"io"
	"log/slog"
	"testing"

	"heliscene/internal/input"
	"heliscene/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher() (*Dispatcher, *shared.State) {
	s := shared.New(800, 600)
	return NewDispatcher(s, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), s
}

func TestResize(t *testing.T) {
	d, s := newDispatcher()
	d.Resize(1280, 720)

	size, err := s.Window.TakeResize()
	require.NoError(t, err)
	assert.Equal(t, shared.WindowSize{Width: 1280, Height: 720, Pending: true}, size)
}

func TestKeyPressAndRelease(t *testing.T) {
	d, s := newDispatcher()
	d.Key(input.KeyW, true)
	d.Key(input.KeyW, true)
	d.Key(input.KeyA, true)
	d.Key(input.KeyA, false)

	keys, err := s.Keys.Pressed()
	require.NoError(t, err)
	assert.Equal(t, []input.Key{input.KeyW}, keys)
	assert.False(t, d.ShouldStop())
}

func TestQuitKeysRequestStop(t *testing.T) {
	for _, key := range []input.Key{input.KeyEscape, input.KeyQ} {
		d, s := newDispatcher()
		d.Key(key, false)
		assert.False(t, d.ShouldStop())

		d.Key(key, true)
		assert.True(t, d.ShouldStop())

		stop, err := s.Stop.Requested()
		require.NoError(t, err)
		assert.True(t, stop)

		keys, err := s.Keys.Pressed()
		require.NoError(t, err)
		assert.Empty(t, keys)
	}
}

func TestCursorDeltas(t *testing.T) {
	d, s := newDispatcher()
	d.CursorMoved(100, 100)
	got, err := s.Mouse.Drain()
	require.NoError(t, err)
	assert.Equal(t, shared.Delta{}, got, "first sample is a baseline")

	d.CursorMoved(103, 98)
	d.CursorMoved(110, 90)
	got, err = s.Mouse.Drain()
	require.NoError(t, err)
	assert.Equal(t, shared.Delta{X: 10, Y: -10}, got)
}

func TestCloseRequested(t *testing.T) {
	d, s := newDispatcher()
	d.CloseRequested()
	assert.True(t, d.ShouldStop())
	stop, err := s.Stop.Requested()
	require.NoError(t, err)
	assert.True(t, stop)
}

func TestShouldStopWhenUnhealthy(t *testing.T) {
	d, s := newDispatcher()
	assert.False(t, d.ShouldStop())

	_, err := s.Health.MarkUnhealthy()
	require.NoError(t, err)
	assert.True(t, d.ShouldStop())

	// the render loop is not asked to stop; it is already gone
	stop, err := s.Stop.Requested()
	require.NoError(t, err)
	assert.False(t, stop)
}

func TestCustomBindings(t *testing.T) {
	s := shared.New(800, 600)
	b := input.NewBindings()
	b.UnbindKey(input.KeyQ)
	d := NewDispatcher(s, b, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d.Key(input.KeyQ, true)
	assert.False(t, d.ShouldStop())
	keys, err := s.Keys.Pressed()
	require.NoError(t, err)
	assert.Equal(t, []input.Key{input.KeyQ}, keys)
}
