package services

import (
	"context"

	"nft-marketplace/internal/domain"
)

// AccessGuard centralizes the authorization predicates so the trade and
// auction books do not duplicate them. It holds no state of its own.
type AccessGuard struct {
	registry domain.ItemRegistry
}

func NewAccessGuard(registry domain.ItemRegistry) *AccessGuard {
	return &AccessGuard{registry: registry}
}

// IsSeller reports whether caller is the seller of record.
func (g *AccessGuard) IsSeller(seller, caller string) bool {
	return seller == caller
}

// CanTransfer fails with ErrItemNotFound for unknown items and
// ErrTransferNotAuthorized when caller is neither owner nor approved.
func (g *AccessGuard) CanTransfer(ctx context.Context, item uint64, caller string) error {
	allowed, err := g.registry.IsApprovedOrOwner(ctx, caller, item)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrTransferNotAuthorized
	}
	return nil
}
