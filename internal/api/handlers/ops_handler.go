package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nft-marketplace/internal/infrastructure/memory"
	"nft-marketplace/pkg/logger"
)

// OpsHandler fronts the in-memory collaborators directly: item
// approvals on the registry and account funding on the ledger. These
// sit outside the marketplace facade because on a real deployment they
// belong to the registry operator and the settlement rail.
type OpsHandler struct {
	registry *memory.ItemRegistry
	ledger   *memory.FundLedger
	log      logger.Logger
}

func NewOpsHandler(registry *memory.ItemRegistry, ledger *memory.FundLedger, log logger.Logger) *OpsHandler {
	return &OpsHandler{
		registry: registry,
		ledger:   ledger,
		log:      log,
	}
}

type ApproveItemRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *OpsHandler) ApproveItem(c echo.Context) error {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid item id"))
	}

	var req ApproveItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	if err := h.registry.Approve(c.Request().Context(), req.Owner, req.Operator, itemID); err != nil {
		return c.JSON(http.StatusForbidden, errorBody(err.Error()))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":     itemID,
		"operator": req.Operator,
	})
}

func (h *OpsHandler) GetItemOwner(c echo.Context) error {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid item id"))
	}

	owner, err := h.registry.OwnerOf(c.Request().Context(), itemID)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":  itemID,
		"owner": owner,
	})
}

func (h *OpsHandler) Deposit(c echo.Context) error {
	account := c.Param("account")

	var req DepositRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	h.ledger.Credit(account, req.Amount)
	h.log.Info("Account funded", "account", account, "amount", req.Amount)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"account": account,
		"balance": h.ledger.Balance(account),
	})
}

func (h *OpsHandler) GetBalance(c echo.Context) error {
	account := c.Param("account")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"account": account,
		"balance": h.ledger.Balance(account),
	})
}
