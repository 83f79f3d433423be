package client

import (
	"context"
	"encoding/json"

	"ticketstorm/internal/core"
)

// Reporting wraps a Transport and reports one event per request, keyed by the
// endpoint stat name. The actor ID travels in the context so flows stay
// unaware of reporting.
type Reporting struct {
	Next     Transport
	Reporter core.Reporter
	Clock    core.Clock
}

func NewReporting(next Transport, rep core.Reporter) *Reporting {
	return &Reporting{Next: next, Reporter: rep, Clock: core.RealClock{}}
}

func (t *Reporting) Do(ctx context.Context, req Request) (Response, error) {
	start := t.Clock.Now()
	resp, err := t.Next.Do(ctx, req)
	duration := t.Clock.Since(start)

	event := core.Event{
		ActorID:   core.ActorIDFromContext(ctx),
		Timestamp: start,
		Step:      req.StatName(),
		Duration:  duration,
		BytesSent: bodySize(req.Body),
		BytesRecv: int64(len(resp.Body)),
	}

	if err != nil {
		event.Success = false
		event.Error = err.Error()
	} else {
		event.StatusCode = resp.StatusCode
		event.Success = resp.StatusCode < 400
		if !event.Success {
			event.Error = string(resp.Body)
		}
	}

	t.Reporter.Report(event)
	return resp, err
}

func bodySize(body any) int64 {
	if body == nil {
		return 0
	}
	b, err := json.Marshal(body)
	if err != nil {
		return 0
	}
	return int64(len(b))
}
