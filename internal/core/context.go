package core

import "context"

// Context key for passing actor ID down to the transport layer.
type contextKey string

const actorIDContextKey contextKey = "actorID"

func ContextWithActorID(ctx context.Context, actorID int) context.Context {
	return context.WithValue(ctx, actorIDContextKey, actorID)
}

func ActorIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(actorIDContextKey).(int); ok {
		return id
	}
	return 0
}
