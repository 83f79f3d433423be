// Package collector aggregates events from actors and computes metrics.
package collector

import (
	"io"
	"sync"
	"time"

	"ticketstorm/internal/core"
)

// Collector aggregates events from actors and produces a summary.
type Collector struct {
	events    []core.Event
	ch        chan core.Event
	done      chan struct{}
	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
}

// NewCollector creates a new Collector and starts its collection goroutine.
func NewCollector() *Collector {
	c := &Collector{
		events:    make([]core.Event, 0),
		ch:        make(chan core.Event, 1000),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	go c.collect()
	return c
}

func (c *Collector) collect() {
	for event := range c.ch {
		c.mu.Lock()
		c.events = append(c.events, event)
		c.mu.Unlock()
	}
	close(c.done)
}

// Report sends an event to the collector. Thread-safe.
// Events are dropped rather than blocking actors when the buffer is full.
func (c *Collector) Report(event core.Event) {
	select {
	case c.ch <- event:
	default:
	}
}

// Close signals the collector to stop accepting events.
func (c *Collector) Close() {
	c.endTime = time.Now()
	close(c.ch)
	<-c.done
}

// Events returns a copy of collected events.
func (c *Collector) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]core.Event, len(c.events))
	copy(result, c.events)
	return result
}

// Duration returns the test duration: start to end if closed, start to now otherwise.
func (c *Collector) Duration() time.Duration {
	if !c.endTime.IsZero() {
		return c.endTime.Sub(c.startTime)
	}
	return time.Since(c.startTime)
}

// Compute aggregates the collected events into metrics.
func (c *Collector) Compute() *Metrics {
	return ComputeMetrics(c.Events(), c.Duration())
}

// PrintText writes metrics in human-readable format.
func (c *Collector) PrintText(w io.Writer, m *Metrics, thresholds *ThresholdResults) {
	FormatText(w, m, thresholds)
}

// PrintJSON writes metrics in JSON format.
func (c *Collector) PrintJSON(w io.Writer, m *Metrics, thresholds *ThresholdResults) {
	FormatJSON(w, m, thresholds)
}
