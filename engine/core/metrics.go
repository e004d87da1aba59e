package core

import "fmt"

// CacheMetrics counts lookups against one bounded cache.
type CacheMetrics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

func (m *CacheMetrics) Hit() {
	m.Hits++
}

func (m *CacheMetrics) Miss() {
	m.Misses++
}

func (m *CacheMetrics) Evict() {
	m.Evictions++
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (m CacheMetrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

func (m CacheMetrics) String() string {
	return fmt.Sprintf("hits=%d misses=%d evictions=%d rate=%.2f", m.Hits, m.Misses, m.Evictions, m.HitRate())
}
