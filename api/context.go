package api

import (
	"context"

	"github.com/davidzaratecamp/paginacarebackend/services"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the authenticated admin to the context
func ctxWithIdentity(ctx context.Context, identity services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFromContext retrieves the admin set by requireAdmin
func identityFromContext(ctx context.Context) (services.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(services.Identity)
	return identity, ok
}
