package access

import (
	"context"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsZero() bool {
	return a.ID == "" || !a.Role.IsValid()
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.IsZero() {
		return Actor{}, false
	}
	return actor, true
}
