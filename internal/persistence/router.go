// Package persistence stores carts in the guest (Redis) and identity (database) backends.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
)

// Router sends each call to the backend that owns the scope kind.
type Router struct {
	guest    cart.PersistenceGateway
	identity cart.PersistenceGateway
}

func NewRouter(guest, identity cart.PersistenceGateway) (*Router, error) {
	if guest == nil {
		return nil, errors.New("guest store required")
	}
	if identity == nil {
		return nil, errors.New("identity store required")
	}
	return &Router{guest: guest, identity: identity}, nil
}

func (r *Router) backend(scope cart.Scope) (cart.PersistenceGateway, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	switch scope.Kind {
	case enums.ScopeKindGuest:
		return r.guest, nil
	case enums.ScopeKindIdentity:
		return r.identity, nil
	}
	return nil, fmt.Errorf("no store for scope %s", scope)
}

func (r *Router) Load(ctx context.Context, scope cart.Scope) (*cart.State, error) {
	b, err := r.backend(scope)
	if err != nil {
		return nil, err
	}
	return b.Load(ctx, scope)
}

func (r *Router) Save(ctx context.Context, scope cart.Scope, state cart.State) error {
	b, err := r.backend(scope)
	if err != nil {
		return err
	}
	return b.Save(ctx, scope, state)
}

func (r *Router) Clear(ctx context.Context, scope cart.Scope) error {
	b, err := r.backend(scope)
	if err != nil {
		return err
	}
	return b.Clear(ctx, scope)
}
