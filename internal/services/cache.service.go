package services

import (
	"sync"
	"time"
)

// ChartCache holds the last rendered chart with a TTL
type ChartCache struct {
	mu         sync.RWMutex
	png        []byte
	renderedAt time.Time
	ttl        time.Duration
}

var chartCache = &ChartCache{
	ttl: 30 * time.Second, // rendering a full grid is slow
}

// SetChartCacheTTL sets the chart cache time-to-live
func SetChartCacheTTL(duration time.Duration) {
	chartCache.mu.Lock()
	defer chartCache.mu.Unlock()
	chartCache.ttl = duration
}

// isCacheValid checks if cache is still valid
func (cc *ChartCache) isCacheValid() bool {
	return cc.png != nil && time.Since(cc.renderedAt) < cc.ttl
}

// GetCachedChart returns the cached chart if valid, otherwise renders a fresh one with render
func GetCachedChart(render func() ([]byte, error)) ([]byte, error) {
	chartCache.mu.RLock()
	if chartCache.isCacheValid() {
		defer chartCache.mu.RUnlock()
		return chartCache.png, nil
	}
	chartCache.mu.RUnlock()

	png, err := render()
	if err != nil {
		return nil, err
	}

	chartCache.mu.Lock()
	chartCache.png = png
	chartCache.renderedAt = time.Now()
	chartCache.mu.Unlock()

	return png, nil
}

// ClearCache drops the cached chart
func ClearCache() {
	chartCache.mu.Lock()
	defer chartCache.mu.Unlock()
	chartCache.png = nil
}
