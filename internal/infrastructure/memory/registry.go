package memory

import (
	"context"
	"sync"

	"nft-marketplace/internal/domain"
)

type item struct {
	owner    string
	approved string
	tokenURI string
}

// ItemRegistry is an in-memory implementation of the external item
// ledger: sequential item ids, single-operator approvals and a
// role-table gating mint.
type ItemRegistry struct {
	mutex   sync.RWMutex
	items   map[uint64]*item
	minters map[string]bool
	nextID  uint64
}

func NewItemRegistry() *ItemRegistry {
	return &ItemRegistry{
		items:   make(map[uint64]*item),
		minters: make(map[string]bool),
	}
}

// GrantMinter gives account the minter role. Mirrors the registry
// operator granting MINTER_ROLE to the marketplace at deploy time.
func (r *ItemRegistry) GrantMinter(account string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.minters[account] = true
}

func (r *ItemRegistry) RevokeMinter(account string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.minters, account)
}

func (r *ItemRegistry) Mint(ctx context.Context, minter, owner, tokenURI string) (uint64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.minters[minter] {
		return 0, domain.ErrMintNotAuthorized
	}

	id := r.nextID
	r.nextID++
	r.items[id] = &item{owner: owner, tokenURI: tokenURI}
	return id, nil
}

func (r *ItemRegistry) OwnerOf(ctx context.Context, itemID uint64) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return "", domain.ErrItemNotFound
	}
	return it.owner, nil
}

func (r *ItemRegistry) TokenURI(ctx context.Context, itemID uint64) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return "", domain.ErrItemNotFound
	}
	return it.tokenURI, nil
}

// Approve lets the current owner designate a single operator allowed
// to transfer the item. Approval is cleared on every transfer.
func (r *ItemRegistry) Approve(ctx context.Context, caller, operator string, itemID uint64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	it, ok := r.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if it.owner != caller {
		return domain.ErrTransferNotAuthorized
	}
	it.approved = operator
	return nil
}

func (r *ItemRegistry) IsApprovedOrOwner(ctx context.Context, caller string, itemID uint64) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return false, domain.ErrItemNotFound
	}
	return it.owner == caller || it.approved == caller, nil
}

func (r *ItemRegistry) Transfer(ctx context.Context, itemID uint64, from, to string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	it, ok := r.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if it.owner != from {
		return domain.ErrTransferNotAuthorized
	}
	it.owner = to
	it.approved = ""
	return nil
}
