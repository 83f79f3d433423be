package collector

import (
	"sort"
	"time"

	"ticketstorm/internal/core"
)

// Metrics contains aggregated test results. Request metrics cover per-endpoint
// events; flow metrics cover completed workflow invocations.
type Metrics struct {
	TotalRequests  int
	SuccessCount   int
	FailureCount   int
	SuccessRate    float64
	RequestsPerSec float64
	TestDuration   time.Duration
	Duration       DurationMetrics
	Steps          map[string]*StepMetrics
	Flows          map[string]*FlowMetrics
}

// DurationMetrics contains latency statistics.
type DurationMetrics struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
	P50 time.Duration
	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// StepMetrics contains per-endpoint statistics.
type StepMetrics struct {
	Count    int
	Success  int
	Failed   int
	Duration DurationMetrics
}

// FlowMetrics contains per-flow outcome statistics. A flow counts as failed
// when its workflow result carried an error, independent of how its
// individual requests fared.
type FlowMetrics struct {
	Count    int
	Success  int
	Failed   int
	Duration DurationMetrics
}

// ComputeMetrics computes metrics from events. Pure function, no side effects.
// Events with a Step name are request measurements; events with only a Flow
// name are workflow outcomes and aggregate separately.
func ComputeMetrics(events []core.Event, testDuration time.Duration) *Metrics {
	m := &Metrics{
		Steps:        make(map[string]*StepMetrics),
		Flows:        make(map[string]*FlowMetrics),
		TestDuration: testDuration,
	}

	if len(events) == 0 {
		return m
	}

	allDurations := make([]time.Duration, 0, len(events))
	stepDurations := make(map[string][]time.Duration)
	flowDurations := make(map[string][]time.Duration)

	for _, e := range events {
		if e.Step == "" && e.Flow != "" {
			fm, exists := m.Flows[e.Flow]
			if !exists {
				fm = &FlowMetrics{}
				m.Flows[e.Flow] = fm
			}
			fm.Count++
			if e.Success {
				fm.Success++
			} else {
				fm.Failed++
			}
			flowDurations[e.Flow] = append(flowDurations[e.Flow], e.Duration)
			continue
		}

		m.TotalRequests++
		if e.Success {
			m.SuccessCount++
		} else {
			m.FailureCount++
		}

		allDurations = append(allDurations, e.Duration)

		sm, exists := m.Steps[e.Step]
		if !exists {
			sm = &StepMetrics{}
			m.Steps[e.Step] = sm
		}
		sm.Count++
		if e.Success {
			sm.Success++
		} else {
			sm.Failed++
		}
		stepDurations[e.Step] = append(stepDurations[e.Step], e.Duration)
	}

	if m.TotalRequests > 0 {
		m.SuccessRate = float64(m.SuccessCount) / float64(m.TotalRequests) * 100
	}
	if m.TestDuration > 0 {
		m.RequestsPerSec = float64(m.TotalRequests) / m.TestDuration.Seconds()
	}

	m.Duration = ComputeDurationMetrics(allDurations)
	for step, durations := range stepDurations {
		m.Steps[step].Duration = ComputeDurationMetrics(durations)
	}
	for flow, durations := range flowDurations {
		m.Flows[flow].Duration = ComputeDurationMetrics(durations)
	}

	return m
}

// ComputePercentile calculates the percentile value from a sorted slice of
// durations using the nearest-rank method. p is between 0 and 1.
func ComputePercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}

// ComputeDurationMetrics calculates all duration statistics from a slice of durations.
func ComputeDurationMetrics(durations []time.Duration) DurationMetrics {
	if len(durations) == 0 {
		return DurationMetrics{}
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return DurationMetrics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: total / time.Duration(len(sorted)),
		P50: ComputePercentile(sorted, 0.50),
		P90: ComputePercentile(sorted, 0.90),
		P95: ComputePercentile(sorted, 0.95),
		P99: ComputePercentile(sorted, 0.99),
	}
}
