// Package service provides supporting infrastructure for the authority
// API: an operation metrics collector over the cryptographic phases.
package service

import (
	"sync"
	"time"
)

// MetricsCollector tracks timing for the long-running cryptographic
// operations: key generation, ballot verification and tallying.
type MetricsCollector struct {
	mu sync.RWMutex

	keygenTime time.Duration

	verificationCount     int
	verificationTotalTime time.Duration

	tallyCount     int
	tallyTotalTime time.Duration
}

// OperationMetrics contains timing information for one operation class.
type OperationMetrics struct {
	Count            int   `json:"count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// MetricsResponse provides the metrics for all operations.
type MetricsResponse struct {
	Keygen       OperationMetrics `json:"keygen"`
	Verification OperationMetrics `json:"verification"`
	Tally        OperationMetrics `json:"tally"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordKeygen stores the duration of the (single) key generation.
func (mc *MetricsCollector) RecordKeygen(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.keygenTime = d
}

// RecordVerification accumulates one ballot verification.
func (mc *MetricsCollector) RecordVerification(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.verificationCount++
	mc.verificationTotalTime += d
}

// RecordTally accumulates one tally run.
func (mc *MetricsCollector) RecordTally(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.tallyCount++
	mc.tallyTotalTime += d
}

// GetMetrics returns current metrics for all operations.
func (mc *MetricsCollector) GetMetrics() MetricsResponse {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return MetricsResponse{
		Keygen: OperationMetrics{
			Count:            1,
			ProcessingTimeMs: mc.keygenTime.Milliseconds(),
		},
		Verification: OperationMetrics{
			Count:            mc.verificationCount,
			ProcessingTimeMs: mc.verificationTotalTime.Milliseconds(),
		},
		Tally: OperationMetrics{
			Count:            mc.tallyCount,
			ProcessingTimeMs: mc.tallyTotalTime.Milliseconds(),
		},
	}
}

// Reset clears all metrics.
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.keygenTime = 0
	mc.verificationCount = 0
	mc.verificationTotalTime = 0
	mc.tallyCount = 0
	mc.tallyTotalTime = 0
}
