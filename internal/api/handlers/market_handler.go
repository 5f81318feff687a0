package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/services"
	"nft-marketplace/pkg/logger"
)

// MarketHandler exposes the marketplace operations over HTTP. It is a
// thin caller of the facade: every rule lives in the engine, the
// handler only binds requests and maps domain errors to status codes.
type MarketHandler struct {
	market *services.Marketplace
	log    logger.Logger
}

func NewMarketHandler(market *services.Marketplace, log logger.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		log:    log,
	}
}

type CreateItemRequest struct {
	Owner    string `json:"owner"`
	TokenURI string `json:"token_uri"`
}

type ListItemRequest struct {
	Item   uint64 `json:"item"`
	Price  uint64 `json:"price"`
	Seller string `json:"seller"`
}

type BuyItemRequest struct {
	Buyer  string `json:"buyer"`
	Amount uint64 `json:"amount"`
}

type CallerRequest struct {
	Caller string `json:"caller"`
}

type ListAuctionRequest struct {
	Item       uint64 `json:"item"`
	StartPrice uint64 `json:"start_price"`
	Seller     string `json:"seller"`
}

type MakeBidRequest struct {
	Bidder string `json:"bidder"`
	Amount uint64 `json:"amount"`
}

type TradeResponse struct {
	TradeID        uint64    `json:"trade_id"`
	Item           uint64    `json:"item"`
	Seller         string    `json:"seller"`
	Price          uint64    `json:"price"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
	StateChangedAt time.Time `json:"state_changed_at"`
}

type AuctionResponse struct {
	AuctionID      uint64    `json:"auction_id"`
	Item           uint64    `json:"item"`
	Seller         string    `json:"seller"`
	BidStartPrice  uint64    `json:"bid_start_price"`
	HighestBid     uint64    `json:"highest_bid"`
	HighestBidder  string    `json:"highest_bidder,omitempty"`
	BidCount       uint64    `json:"bid_count"`
	State          string    `json:"state"`
	Deadline       time.Time `json:"deadline"`
	CreatedAt      time.Time `json:"created_at"`
	StateChangedAt time.Time `json:"state_changed_at"`
}

func (h *MarketHandler) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if req.Owner == "" {
		return c.JSON(http.StatusBadRequest, errorBody("owner is required"))
	}

	itemID, err := h.market.CreateItem(c.Request().Context(), req.Owner, req.TokenURI)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"item":      itemID,
		"owner":     req.Owner,
		"token_uri": req.TokenURI,
	})
}

func (h *MarketHandler) ListItem(c echo.Context) error {
	var req ListItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if req.Seller == "" {
		return c.JSON(http.StatusBadRequest, errorBody("seller is required"))
	}

	trade, err := h.market.ListItem(c.Request().Context(), req.Item, req.Price, req.Seller)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusCreated, tradeResponse(trade))
}

func (h *MarketHandler) BuyItem(c echo.Context) error {
	tradeID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid trade id"))
	}

	var req BuyItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if req.Buyer == "" {
		return c.JSON(http.StatusBadRequest, errorBody("buyer is required"))
	}

	trade, err := h.market.BuyItem(c.Request().Context(), tradeID, req.Amount, req.Buyer)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, tradeResponse(trade))
}

func (h *MarketHandler) CancelTrade(c echo.Context) error {
	tradeID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid trade id"))
	}

	var req CallerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	trade, err := h.market.Cancel(c.Request().Context(), tradeID, req.Caller)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, tradeResponse(trade))
}

func (h *MarketHandler) GetTrade(c echo.Context) error {
	tradeID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid trade id"))
	}

	trade, err := h.market.GetTrade(tradeID)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, tradeResponse(trade))
}

func (h *MarketHandler) ListItemOnAuction(c echo.Context) error {
	var req ListAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if req.Seller == "" {
		return c.JSON(http.StatusBadRequest, errorBody("seller is required"))
	}

	auction, err := h.market.ListItemOnAuction(c.Request().Context(), req.Item, req.StartPrice, req.Seller)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusCreated, auctionResponse(auction))
}

func (h *MarketHandler) MakeBid(c echo.Context) error {
	auctionID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid auction id"))
	}

	var req MakeBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if req.Bidder == "" {
		return c.JSON(http.StatusBadRequest, errorBody("bidder is required"))
	}

	auction, err := h.market.MakeBid(c.Request().Context(), auctionID, req.Amount, req.Bidder)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, auctionResponse(auction))
}

func (h *MarketHandler) FinishAuction(c echo.Context) error {
	auctionID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid auction id"))
	}

	var req CallerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	auction, err := h.market.FinishAuction(c.Request().Context(), auctionID, req.Caller)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, auctionResponse(auction))
}

func (h *MarketHandler) CancelAuction(c echo.Context) error {
	auctionID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid auction id"))
	}

	var req CallerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	auction, err := h.market.CancelAuction(c.Request().Context(), auctionID, req.Caller)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, auctionResponse(auction))
}

func (h *MarketHandler) GetAuction(c echo.Context) error {
	auctionID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid auction id"))
	}

	auction, err := h.market.GetAuction(auctionID)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, auctionResponse(auction))
}

func (h *MarketHandler) domainError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrTradeNotFound),
		errors.Is(err, domain.ErrAuctionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotSeller),
		errors.Is(err, domain.ErrTransferNotAuthorized),
		errors.Is(err, domain.ErrMintNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrTradeNotActive),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrAuctionNotEnded),
		errors.Is(err, domain.ErrAuctionEnded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrIncorrectPayment),
		errors.Is(err, domain.ErrBidBelowStartPrice),
		errors.Is(err, domain.ErrBidBelowHighest),
		errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusBadRequest
	default:
		h.log.Error("Unexpected error", "error", err)
	}

	return c.JSON(status, errorBody(err.Error()))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

func tradeResponse(trade *domain.Trade) TradeResponse {
	return TradeResponse{
		TradeID:        trade.ID,
		Item:           trade.Item,
		Seller:         trade.Seller,
		Price:          trade.Price,
		State:          trade.State.String(),
		CreatedAt:      trade.CreatedAt,
		StateChangedAt: trade.StateChangedAt,
	}
}

func auctionResponse(auction *domain.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:      auction.ID,
		Item:           auction.Item,
		Seller:         auction.Seller,
		BidStartPrice:  auction.BidStartPrice,
		HighestBid:     auction.HighestBid,
		HighestBidder:  auction.HighestBidder,
		BidCount:       auction.BidCount,
		State:          auction.State.String(),
		Deadline:       auction.Deadline(),
		CreatedAt:      auction.CreatedAt,
		StateChangedAt: auction.StateChangedAt,
	}
}
