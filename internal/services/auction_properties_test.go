package services

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// Property: across any sequence of bid attempts the highest bid is
// monotonically non-decreasing, escrow holds exactly one bid's worth
// of funds, and no unit of value is ever created or destroyed.
func TestMakeBidProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := newTestMarket()
		ctx := context.Background()

		startPrice := rapid.Uint64Range(1, 1000).Draw(t, "start_price")
		item := m.mintItem(seller)
		auction, err := m.auctions.ListItemOnAuction(ctx, item, startPrice, seller)
		if err != nil {
			t.Fatalf("failed to list auction: %v", err)
		}

		const funding = uint64(1_000_000)
		bidders := []string{"0xb1", "0xb2", "0xb3"}
		for _, b := range bidders {
			m.ledger.Credit(b, funding)
		}
		totalFunds := funding * uint64(len(bidders))

		attempts := rapid.IntRange(1, 30).Draw(t, "attempts")
		var lastHighest uint64

		for i := 0; i < attempts; i++ {
			bidder := rapid.SampledFrom(bidders).Draw(t, fmt.Sprintf("bidder_%d", i))
			amount := rapid.Uint64Range(0, 3000).Draw(t, fmt.Sprintf("amount_%d", i))

			before, err := m.auctions.GetAuction(auction.ID)
			if err != nil {
				t.Fatalf("get auction: %v", err)
			}
			prevBidder := before.HighestBidder
			prevBid := before.HighestBid
			prevBalance := m.ledger.Balance(prevBidder)

			after, err := m.auctions.MakeBid(ctx, auction.ID, amount, bidder)
			if err != nil {
				// Rejected bids must leave the record untouched.
				got, getErr := m.auctions.GetAuction(auction.ID)
				if getErr != nil {
					t.Fatalf("get auction: %v", getErr)
				}
				if got.HighestBid != prevBid || got.BidCount != before.BidCount {
					t.Fatalf("rejected bid mutated the auction: %+v vs %+v", got, before)
				}
				continue
			}

			if after.HighestBid < lastHighest {
				t.Fatalf("highest bid decreased: %d -> %d", lastHighest, after.HighestBid)
			}
			lastHighest = after.HighestBid

			// The outbid leader got their escrow back before the new
			// bid was recorded.
			if before.BidCount > 0 && prevBidder != bidder {
				if got := m.ledger.Balance(prevBidder); got != prevBalance+prevBid {
					t.Fatalf("outbid %s not refunded: balance %d, want %d", prevBidder, got, prevBalance+prevBid)
				}
			}

			// Escrow never exceeds one bid's worth of funds.
			if escrow := m.ledger.Balance(marketAccount); escrow != after.HighestBid {
				t.Fatalf("escrow %d != highest bid %d", escrow, after.HighestBid)
			}
		}

		// Value conservation across all accounts.
		var sum uint64
		for _, b := range bidders {
			sum += m.ledger.Balance(b)
		}
		sum += m.ledger.Balance(marketAccount)
		if sum != totalFunds {
			t.Fatalf("value not conserved: %d != %d", sum, totalFunds)
		}
	})
}
