package memory

import (
	"context"
	"sync"

	"nft-marketplace/internal/domain"
)

// FundLedger is an in-memory value ledger. Transfer debits and credits
// under one lock, so a transfer either fully applies or fully fails.
type FundLedger struct {
	mutex    sync.RWMutex
	balances map[string]uint64
}

func NewFundLedger() *FundLedger {
	return &FundLedger{
		balances: make(map[string]uint64),
	}
}

// Credit funds an account out of thin air. Deposits from the outer
// settlement rail land here.
func (l *FundLedger) Credit(account string, amount uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.balances[account] += amount
}

func (l *FundLedger) Balance(account string) uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.balances[account]
}

func (l *FundLedger) Transfer(ctx context.Context, from, to string, amount uint64) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.balances[from] < amount {
		return domain.ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
