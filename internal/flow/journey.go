package flow

import (
	"context"

	"ticketstorm/internal/config"
	"ticketstorm/internal/core"
	"ticketstorm/internal/ratelimit"
)

// Flow names used in outcome events and the per-flow report sections.
const (
	FlowQuery   = "query"
	FlowLogin   = "login"
	FlowBooking = "booking"
)

// Journey is the core.Workflow run by every actor. Each iteration draws one
// of the flows according to the configured weights, runs it, and reports a
// single flow-outcome event. Flow failures are reported, never propagated:
// the actor keeps iterating until it is stopped.
type Journey struct {
	Booking *Booking
	Query   *Query
	Login   *Login

	Weights config.Weights
	Decide  Decider
	Clock   core.Clock

	// Limiter throttles iteration starts; nil means unlimited.
	Limiter *ratelimit.RateLimiter
}

// Run executes one weighted iteration.
func (j *Journey) Run(ctx context.Context, actorID int, _ core.Coordinator, rep core.Reporter) error {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	ctx = core.ContextWithActorID(ctx, actorID)
	name := j.pickFlow()

	start := j.Clock.Now()
	var ok bool
	var reason string
	switch name {
	case FlowQuery:
		r := j.Query.Execute(ctx, "", "", "")
		ok, reason = r.Success, r.Error
	case FlowLogin:
		r := j.Login.Execute(ctx)
		ok, reason = r.Success, r.Error
	case FlowBooking:
		r := j.Booking.Execute(ctx, BookingParams{})
		ok, reason = r.Success, r.Error
	}

	rep.Report(core.Event{
		ActorID:   actorID,
		Timestamp: start,
		Flow:      name,
		Duration:  j.Clock.Now().Sub(start),
		Success:   ok,
		Error:     reason,
	})
	return nil
}

// pickFlow draws a flow name proportionally to the configured weights.
// A non-positive total falls back to the booking flow.
func (j *Journey) pickFlow() string {
	w := j.Weights
	total := w.Query + w.Login + w.Booking
	if total <= 0 {
		return FlowBooking
	}
	n := j.Decide.Intn(total)
	if n < w.Query {
		return FlowQuery
	}
	if n < w.Query+w.Login {
		return FlowLogin
	}
	return FlowBooking
}
