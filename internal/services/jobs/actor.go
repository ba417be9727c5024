package jobs

import (
	"context"

	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

type actorKey struct{}

// WithActor records who is acting for audit columns.
func WithActor(ctx context.Context, a entity.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the acting entity, or entity.SystemActor.
func ActorFromContext(ctx context.Context) entity.Actor {
	if a, ok := ctx.Value(actorKey{}).(entity.Actor); ok && a.Entity != "" {
		return a
	}
	return entity.SystemActor
}
