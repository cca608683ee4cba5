package cart

import (
	"context"
	"strings"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

// Scope is the persistence namespace of a cart.
type Scope struct {
	Kind enums.ScopeKind
	ID   string
}

func GuestScope(sessionID string) Scope {
	return Scope{Kind: enums.ScopeKindGuest, ID: sessionID}
}

func IdentityScope(identityID string) Scope {
	return Scope{Kind: enums.ScopeKindIdentity, ID: identityID}
}

// ScopeFor picks the identity scope for signed-in carts and the guest scope otherwise.
func ScopeFor(s State) Scope {
	if s.IsGuest() {
		return GuestScope(s.SessionID)
	}
	return IdentityScope(*s.IdentityID)
}

func (s Scope) String() string {
	return s.Kind.String() + ":" + s.ID
}

func (s Scope) Validate() error {
	if !s.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown scope kind")
	}
	if strings.TrimSpace(s.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scope id is required")
	}
	return nil
}

// PersistenceGateway stores carts by scope. Load returns nil, nil when the
// scope has nothing stored.
type PersistenceGateway interface {
	Load(ctx context.Context, scope Scope) (*State, error)
	Save(ctx context.Context, scope Scope, state State) error
	Clear(ctx context.Context, scope Scope) error
}
