package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"ticketstorm/internal/core"
)

const maxBodyLogSize = 1024

// DebugLogger writes request/response traces for verbose mode.
// A nil *DebugLogger is safe to use and logs nothing.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

func (d *DebugLogger) LogRequest(actorID int, req Request) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\n[Actor %d] >>> %s %s\n", actorID, req.Method, req.Path))
	for name, value := range req.Headers {
		buf.WriteString(fmt.Sprintf("    %s: %s\n", name, value))
	}
	if req.Body != nil {
		if b, err := json.Marshal(req.Body); err == nil {
			buf.WriteString(fmt.Sprintf("  Body: %s\n", truncateBody(b)))
		}
	}
	fmt.Fprint(d.out, buf.String())
}

func (d *DebugLogger) LogResponse(actorID int, req Request, resp Response, duration time.Duration) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("[Actor %d] <<< %s %s -> %d (%s)\n",
		actorID, req.Method, req.Path, resp.StatusCode, duration.Round(time.Millisecond)))
	if len(resp.Body) > 0 {
		buf.WriteString(fmt.Sprintf("  Body: %s\n", truncateBody(resp.Body)))
	}
	fmt.Fprint(d.out, buf.String())
}

func (d *DebugLogger) LogError(actorID int, req Request, err error, duration time.Duration) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "[Actor %d] !!! %s %s failed after %s: %v\n",
		actorID, req.Method, req.Path, duration.Round(time.Millisecond), err)
}

func truncateBody(body []byte) string {
	if len(body) > maxBodyLogSize {
		return string(body[:maxBodyLogSize]) + "... (truncated)"
	}
	return string(body)
}

// Debugging wraps a Transport and traces every request through a DebugLogger.
type Debugging struct {
	Next   Transport
	Logger *DebugLogger
	Clock  core.Clock
}

func NewDebugging(next Transport, logger *DebugLogger) *Debugging {
	return &Debugging{Next: next, Logger: logger, Clock: core.RealClock{}}
}

func (t *Debugging) Do(ctx context.Context, req Request) (Response, error) {
	actorID := core.ActorIDFromContext(ctx)
	t.Logger.LogRequest(actorID, req)

	start := t.Clock.Now()
	resp, err := t.Next.Do(ctx, req)
	duration := t.Clock.Since(start)

	if err != nil {
		t.Logger.LogError(actorID, req, err, duration)
		return resp, err
	}
	t.Logger.LogResponse(actorID, req, resp, duration)
	return resp, nil
}
