package render

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviary/internal/scape"
)

func viewerConfig() scape.Config {
	cfg := scape.DefaultConfig()
	cfg.WorldAnimals = 4
	cfg.WorldFoods = 6
	cfg.SimGenerationLength = 20
	return cfg
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewerKeys(t *testing.T) {
	screen := newTestScreen(t, 40, 12)
	viewer, err := NewViewer(screen, viewerConfig(), 1)
	require.NoError(t, err)

	require.NoError(t, viewer.Advance())
	assert.Equal(t, 1, viewer.Stats().Age)

	done, err := viewer.HandleEvent(key('p'))
	require.NoError(t, err)
	assert.False(t, done)
	assert.True(t, viewer.Paused())
	require.NoError(t, viewer.Advance())
	assert.Equal(t, 1, viewer.Stats().Age, "paused viewer must not step")

	_, err = viewer.HandleEvent(key('p'))
	require.NoError(t, err)
	assert.False(t, viewer.Paused())

	_, err = viewer.HandleEvent(key('+'))
	require.NoError(t, err)
	_, err = viewer.HandleEvent(key('+'))
	require.NoError(t, err)
	assert.Equal(t, 4, viewer.Speed())
	require.NoError(t, viewer.Advance())
	assert.Equal(t, 5, viewer.Stats().Age)

	_, err = viewer.HandleEvent(key('-'))
	require.NoError(t, err)
	assert.Equal(t, 2, viewer.Speed())

	_, err = viewer.HandleEvent(key('t'))
	require.NoError(t, err)
	stats := viewer.Stats()
	assert.Equal(t, 1, stats.Generation)
	assert.Equal(t, 0, stats.Age)
	assert.True(t, stats.HasFitness())

	_, err = viewer.HandleEvent(key('r'))
	require.NoError(t, err)
	assert.Equal(t, 0, viewer.Stats().Generation)

	done, err = viewer.HandleEvent(key('q'))
	require.NoError(t, err)
	assert.True(t, done)

	done, err = viewer.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	require.NoError(t, err)
	assert.True(t, done)
}

func TestViewerSpeedBounds(t *testing.T) {
	screen := newTestScreen(t, 40, 12)
	viewer, err := NewViewer(screen, viewerConfig(), 2)
	require.NoError(t, err)

	_, err = viewer.HandleEvent(key('-'))
	require.NoError(t, err)
	assert.Equal(t, minSpeed, viewer.Speed())

	for i := 0; i < 20; i++ {
		_, err = viewer.HandleEvent(key('+'))
		require.NoError(t, err)
	}
	assert.Equal(t, maxSpeed, viewer.Speed())
}

func TestViewerRunQuitsOnKey(t *testing.T) {
	screen := newTestScreen(t, 40, 12)
	viewer, err := NewViewer(screen, viewerConfig(), 3)
	require.NoError(t, err)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, viewer.Run(ctx))
}

func TestViewerRunStopsOnContext(t *testing.T) {
	screen := newTestScreen(t, 40, 12)
	viewer, err := NewViewer(screen, viewerConfig(), 4)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, viewer.Run(ctx), context.DeadlineExceeded)
}

func TestNewViewerRejectsInvalidConfig(t *testing.T) {
	screen := newTestScreen(t, 40, 12)
	cfg := viewerConfig()
	cfg.WorldAnimals = 0
	_, err := NewViewer(screen, cfg, 1)
	assert.ErrorIs(t, err, scape.ErrInvalidConfig)
	_, err = NewViewer(nil, viewerConfig(), 1)
	assert.Error(t, err)
}
