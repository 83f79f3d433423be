// Package core defines the fundamental interfaces and types for ticketstorm.
package core

import (
	"context"
	"time"
)

// Event represents a single measurement reported during a flow run.
// Per-request events carry the endpoint stat name in Step; flow-level
// outcome events carry the flow name in Flow with an empty Step.
type Event struct {
	ActorID    int
	Timestamp  time.Time
	Flow       string // flow name for outcome events, empty for raw requests
	Step       string // endpoint stat name for request events
	Duration   time.Duration
	Success    bool
	Error      string
	StatusCode int
	BytesSent  int64 // request size for throughput metrics
	BytesRecv  int64 // response size for throughput metrics
}

// Workflow defines a user journey that an actor executes repeatedly.
type Workflow interface {
	Run(ctx context.Context, actorID int, coord Coordinator, rep Reporter) error
}

// Coordinator spawns and manages actors.
type Coordinator interface {
	Spawn(ctx context.Context, count int, workflow Workflow)
}

// Reporter is the interface actors use to send events to the Collector.
type Reporter interface {
	Report(Event)
}
