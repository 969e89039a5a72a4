// Package monitoring reports process memory and watches for heap or
// goroutine growth that suggests a leak.
package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

const bytesPerMB = 1024 * 1024

// MemorySnapshot represents a point-in-time memory state
type MemorySnapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	HeapAllocMB  float64   `json:"heap_alloc_mb"`
	HeapInuseMB  float64   `json:"heap_inuse_mb"`
	HeapIdleMB   float64   `json:"heap_idle_mb"`
	StackInuseMB float64   `json:"stack_inuse_mb"`
	SysMB        float64   `json:"sys_mb"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
	GOMaxProcs   int       `json:"gomaxprocs"`

	heapAlloc uint64
}

// TakeSnapshot captures current memory state
func TakeSnapshot() MemorySnapshot {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return MemorySnapshot{
		Timestamp:    time.Now().UTC(),
		HeapAllocMB:  float64(stats.Alloc) / bytesPerMB,
		HeapInuseMB:  float64(stats.HeapInuse) / bytesPerMB,
		HeapIdleMB:   float64(stats.HeapIdle) / bytesPerMB,
		StackInuseMB: float64(stats.StackInuse) / bytesPerMB,
		SysMB:        float64(stats.Sys) / bytesPerMB,
		NumGC:        stats.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		GOMaxProcs:   runtime.GOMAXPROCS(0),
		heapAlloc:    stats.Alloc,
	}
}

// MemoryMonitor compares snapshots against a baseline taken after warmup.
type MemoryMonitor struct {
	mu                 sync.RWMutex
	baselineHeap       uint64
	baselineGoroutines int
	threshold          float64 // e.g., 2.0 for 200% growth
	checkInterval      time.Duration
	warningCallback    func(report string)
}

// NewMemoryMonitor creates a new memory monitor.
// threshold is the growth multiplier that triggers a warning.
func NewMemoryMonitor(threshold float64, checkInterval time.Duration) *MemoryMonitor {
	return &MemoryMonitor{
		threshold:     threshold,
		checkInterval: checkInterval,
	}
}

// EstablishBaseline records current heap and goroutine counts.
func (m *MemoryMonitor) EstablishBaseline() {
	runtime.GC()
	s := TakeSnapshot()

	m.mu.Lock()
	m.baselineHeap = s.heapAlloc
	m.baselineGoroutines = s.NumGoroutine
	m.mu.Unlock()
}

// CheckForLeaks compares current memory to baseline
func (m *MemoryMonitor) CheckForLeaks() (leaked bool, report string) {
	m.mu.RLock()
	baselineHeap := m.baselineHeap
	baselineGoroutines := m.baselineGoroutines
	threshold := m.threshold
	m.mu.RUnlock()

	if baselineHeap == 0 || baselineGoroutines == 0 {
		return false, ""
	}

	return compare(TakeSnapshot(), baselineHeap, baselineGoroutines, threshold)
}

func compare(s MemorySnapshot, baselineHeap uint64, baselineGoroutines int, threshold float64) (bool, string) {
	heapGrowth := float64(s.heapAlloc) / float64(baselineHeap)
	if heapGrowth > threshold {
		return true, fmt.Sprintf(
			"Memory leak detected: heap grew %.2fx (%.2f MB → %.2f MB)",
			heapGrowth,
			float64(baselineHeap)/bytesPerMB,
			s.HeapAllocMB,
		)
	}

	goroutineGrowth := float64(s.NumGoroutine) / float64(baselineGoroutines)
	if goroutineGrowth > threshold {
		return true, fmt.Sprintf(
			"Goroutine leak detected: count grew %.2fx (%d → %d)",
			goroutineGrowth,
			baselineGoroutines,
			s.NumGoroutine,
		)
	}

	return false, ""
}

// Run checks for leaks every interval until ctx is done.
func (m *MemoryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if leaked, report := m.CheckForLeaks(); leaked {
				m.mu.RLock()
				callback := m.warningCallback
				m.mu.RUnlock()

				if callback != nil {
					callback(report)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// SetWarningCallback sets callback for leak warnings
func (m *MemoryMonitor) SetWarningCallback(callback func(string)) {
	m.mu.Lock()
	m.warningCallback = callback
	m.mu.Unlock()
}

// GetBaseline returns the current baseline metrics
func (m *MemoryMonitor) GetBaseline() (heapMB float64, goroutines int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return float64(m.baselineHeap) / bytesPerMB, m.baselineGoroutines
}
