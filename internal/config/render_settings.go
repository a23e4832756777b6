package config

import "sync"

// RenderSettings holds the settings the render loop re-reads every frame.
type RenderSettings struct {
	mu       sync.RWMutex
	fpsLimit int
}

var globalRenderSettings = &RenderSettings{}

// GetFPSLimit returns the current frame cap; 0 means uncapped.
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap, clamped to [0, 1000].
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}
