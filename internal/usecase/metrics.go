package usecase

import (
	"sync"
	"time"

	"github.com/example/colormatch/internal/undertone"
)

// MetricsSummary represents aggregated analysis insights since the process started.
type MetricsSummary struct {
	TotalAnalyses    int64                    `json:"total_analyses"`
	CacheHits        int64                    `json:"cache_hits"`
	Fallbacks        int64                    `json:"fallbacks"`
	PrimaryFailures  int64                    `json:"primary_failures"`
	CacheHitRate     float64                  `json:"cache_hit_rate"`
	ToneCounts       map[undertone.Tone]int64 `json:"tone_counts"`
	AverageLatencyMs float64                  `json:"average_latency_ms"`
}

type outcome int

const (
	outcomeAnalyzed outcome = iota
	outcomeCacheHit
	outcomeFallback
	outcomePrimaryFailed
)

type metrics struct {
	mu              sync.Mutex
	total           int64
	cacheHits       int64
	fallbacks       int64
	primaryFailures int64
	tones           map[undertone.Tone]int64
	latency         time.Duration
}

func newMetrics() *metrics {
	return &metrics{tones: make(map[undertone.Tone]int64)}
}

func (m *metrics) record(a undertone.Analysis, elapsed time.Duration, o outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.tones[a.Tone]++
	m.latency += elapsed
	switch o {
	case outcomeCacheHit:
		m.cacheHits++
	case outcomeFallback:
		m.fallbacks++
	case outcomePrimaryFailed:
		m.primaryFailures++
	}
}

// MetricsSummary aggregates the analyses served so far.
func (uc *AnalysisUseCase) MetricsSummary() *MetricsSummary {
	m := uc.metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := &MetricsSummary{
		TotalAnalyses:   m.total,
		CacheHits:       m.cacheHits,
		Fallbacks:       m.fallbacks,
		PrimaryFailures: m.primaryFailures,
		ToneCounts:      make(map[undertone.Tone]int64, len(undertone.Tones())),
	}
	for _, t := range undertone.Tones() {
		summary.ToneCounts[t] = m.tones[t]
	}
	if m.total > 0 {
		summary.CacheHitRate = float64(m.cacheHits) / float64(m.total)
		summary.AverageLatencyMs = float64(m.latency) / float64(time.Millisecond) / float64(m.total)
	}
	return summary
}
