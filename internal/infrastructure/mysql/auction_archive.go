package mysql

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"

	"nft-marketplace/internal/domain"
)

type MySQLAuctionArchive struct {
	db *sql.DB
}

func NewMySQLAuctionArchive(db *sql.DB) *MySQLAuctionArchive {
	return &MySQLAuctionArchive{db: db}
}

func (r *MySQLAuctionArchive) UpsertAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, item, seller, bid_start_price, highest_bid,
            highest_bidder, bid_count, state, created_at, state_changed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            highest_bid = VALUES(highest_bid),
            highest_bidder = VALUES(highest_bidder),
            bid_count = VALUES(bid_count),
            state = VALUES(state),
            state_changed_at = VALUES(state_changed_at)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.Item, auction.Seller, auction.BidStartPrice,
		auction.HighestBid, auction.HighestBidder, auction.BidCount,
		int(auction.State), auction.CreatedAt, auction.StateChangedAt)
	return err
}

func (r *MySQLAuctionArchive) GetAuction(ctx context.Context, id uint64) (*domain.Auction, error) {
	query := `
        SELECT id, item, seller, bid_start_price, highest_bid, highest_bidder,
            bid_count, state, created_at, state_changed_at
        FROM auctions WHERE id = ?
    `

	var auction domain.Auction
	var state int

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&auction.ID, &auction.Item, &auction.Seller, &auction.BidStartPrice,
		&auction.HighestBid, &auction.HighestBidder, &auction.BidCount,
		&state, &auction.CreatedAt, &auction.StateChangedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuctionNotFound
	}
	if err != nil {
		return nil, err
	}

	auction.State = domain.AuctionState(state)
	return &auction, nil
}
