package domain

import "errors"

// Every error below is a precondition failure attributable to caller
// input or timing. A failed operation leaves records, item custody and
// escrowed funds exactly as they were.
var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrTradeNotFound   = errors.New("trade does not exist")
	ErrAuctionNotFound = errors.New("auction does not exist")

	ErrTradeNotActive   = errors.New("trade is not on sale")
	ErrAuctionNotActive = errors.New("auction is not active")

	ErrNotSeller             = errors.New("caller is not the seller")
	ErrTransferNotAuthorized = errors.New("caller is not allowed to transfer this item")
	ErrMintNotAuthorized     = errors.New("caller does not have the minter role")

	ErrIncorrectPayment   = errors.New("payment amount does not match the asking price")
	ErrBidBelowStartPrice = errors.New("bid is below the auction start price")
	ErrBidBelowHighest    = errors.New("bid does not beat the current highest bid")
	ErrInsufficientFunds  = errors.New("account balance is insufficient")

	ErrAuctionNotEnded = errors.New("auction window has not elapsed yet")
	ErrAuctionEnded    = errors.New("auction window has already elapsed")
)
