package mysql

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"

	"nft-marketplace/internal/domain"
)

type MySQLTradeArchive struct {
	db *sql.DB
}

func NewMySQLTradeArchive(db *sql.DB) *MySQLTradeArchive {
	return &MySQLTradeArchive{db: db}
}

func (r *MySQLTradeArchive) UpsertTrade(ctx context.Context, trade *domain.Trade) error {
	query := `
        INSERT INTO trades (id, item, seller, price, state, created_at, state_changed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE state = VALUES(state), state_changed_at = VALUES(state_changed_at)
    `
	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Item, trade.Seller, trade.Price,
		int(trade.State), trade.CreatedAt, trade.StateChangedAt)
	return err
}

func (r *MySQLTradeArchive) GetTrade(ctx context.Context, id uint64) (*domain.Trade, error) {
	query := `
        SELECT id, item, seller, price, state, created_at, state_changed_at
        FROM trades WHERE id = ?
    `

	var trade domain.Trade
	var state int

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trade.ID, &trade.Item, &trade.Seller, &trade.Price,
		&state, &trade.CreatedAt, &trade.StateChangedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}

	trade.State = domain.TradeState(state)
	return &trade, nil
}
