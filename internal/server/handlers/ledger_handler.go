package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/ledger"
)

// LedgerHandler exposes the dashboard, deliveries, payments and rates.
type LedgerHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP adapter over the dashboard controller.
func NewLedgerHandler(ctrl *dashboard.Controller, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ctrl: ctrl, logger: logger}
}

type filterResponse struct {
	Item *models.ServiceKind `json:"item,omitempty"`
	From *models.Date        `json:"from,omitempty"`
	To   *models.Date        `json:"to,omitempty"`
}

type dashboardResponse struct {
	Filter     filterResponse         `json:"filter"`
	Deliveries []models.DeliveryEvent `json:"deliveries"`
	Payments   []models.PaymentRecord `json:"payments"`
	Rates      models.RateTable       `json:"rates"`
	Summary    ledger.Summary         `json:"summary"`
	Notices    []string               `json:"notices"`
}

// Dashboard returns the filtered tables and the summary in one payload.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	filter, err := parseFilter(c, h.ctrl.DefaultFilter())
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	view := h.ctrl.View(filter)
	notices := view.Notices
	if notices == nil {
		notices = []string{}
	}
	c.JSON(http.StatusOK, dashboardResponse{
		Filter:     filterResponse{Item: filter.Item, From: filter.From, To: filter.To},
		Deliveries: view.Deliveries,
		Payments:   view.Payments,
		Rates:      view.Rates,
		Summary:    view.Summary,
		Notices:    notices,
	})
}

// ListDeliveries returns the deliveries inside the filter, newest first.
func (h *LedgerHandler) ListDeliveries(c *gin.Context) {
	filter, err := parseFilter(c, h.ctrl.DefaultFilter())
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": h.ctrl.View(filter).Deliveries})
}

type deliveryRequest struct {
	Date           string           `json:"date" binding:"required"`
	Item           string           `json:"item" binding:"required,servicekind"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Status         string           `json:"status"`
	BilledQuantity *decimal.Decimal `json:"billedQuantity"`
}

// toModel converts the request. An omitted status falls back to keep, which is
// the stored status on updates and delivered on creation.
func (r deliveryRequest) toModel(id string, keep models.Status) (models.DeliveryEvent, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.DeliveryEvent{}, err
	}
	item, err := models.ParseServiceKind(r.Item)
	if err != nil {
		return models.DeliveryEvent{}, err
	}
	status := keep
	if strings.TrimSpace(r.Status) != "" || keep == "" {
		if status, err = models.ParseStatus(r.Status); err != nil {
			return models.DeliveryEvent{}, err
		}
	}
	return models.DeliveryEvent{
		ID:             id,
		Date:           date,
		Item:           item,
		Quantity:       r.Quantity,
		Status:         status,
		BilledQuantity: r.BilledQuantity,
	}, nil
}

// CreateDelivery records a delivery or a return.
func (h *LedgerHandler) CreateDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	event, err := req.toModel("", models.StatusDelivered)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.ctrl.AddDelivery(c.Request.Context(), event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// UpdateDelivery replaces the delivery identified by :id.
func (h *LedgerHandler) UpdateDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	var keep models.Status
	if current, ok := h.ctrl.Delivery(c.Param("id")); ok {
		keep = current.Status
	}
	event, err := req.toModel(c.Param("id"), keep)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.ctrl.UpdateDelivery(c.Request.Context(), event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteDelivery removes the delivery identified by :id.
func (h *LedgerHandler) DeleteDelivery(c *gin.Context) {
	if err := h.ctrl.DeleteDelivery(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPayments returns the payments inside the filter, newest first.
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	filter, err := parseFilter(c, h.ctrl.DefaultFilter())
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": h.ctrl.View(filter).Payments})
}

type paymentRequest struct {
	Date       string          `json:"date" binding:"required"`
	Item       string          `json:"item" binding:"required,servicekind"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	Attachment string          `json:"attachment" binding:"omitempty,url"`
}

func (r paymentRequest) toModel(id string) (models.PaymentRecord, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	item, err := models.ParseServiceKind(r.Item)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	return models.PaymentRecord{
		ID:         id,
		Date:       date,
		Item:       item,
		Amount:     r.Amount,
		Reason:     models.OptionalString(r.Reason),
		Attachment: models.OptionalString(r.Attachment),
	}, nil
}

// CreatePayment records money paid for a service kind.
func (h *LedgerHandler) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	payment, err := req.toModel("")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.ctrl.AddPayment(c.Request.Context(), payment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// UpdatePayment replaces the payment identified by :id.
func (h *LedgerHandler) UpdatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	payment, err := req.toModel(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.ctrl.UpdatePayment(c.Request.Context(), payment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeletePayment removes the payment identified by :id.
func (h *LedgerHandler) DeletePayment(c *gin.Context) {
	if err := h.ctrl.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type settlementRequest struct {
	Item       string           `json:"item" binding:"required,servicekind"`
	Amount     *decimal.Decimal `json:"amount"`
	Date       string           `json:"date"`
	Reason     string           `json:"reason"`
	Attachment string           `json:"attachment" binding:"omitempty,url"`
}

// Settle records a payment against the outstanding balance of a kind. Without
// an amount the whole balance is settled.
func (h *LedgerHandler) Settle(c *gin.Context) {
	var req settlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	item, err := models.ParseServiceKind(req.Item)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	settle := dashboard.SettleRequest{
		Item:       item,
		Amount:     req.Amount,
		Reason:     models.OptionalString(req.Reason),
		Attachment: models.OptionalString(req.Attachment),
	}
	if req.Date != "" {
		if settle.Date, err = models.ParseDate(req.Date); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	saved, err := h.ctrl.Settle(c.Request.Context(), settle)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// GetRates returns the current rate table.
func (h *LedgerHandler) GetRates(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Rates())
}

type ratesRequest struct {
	Milk          *decimal.Decimal `json:"milk"`
	Water         *decimal.Decimal `json:"water"`
	HouseCleaning *decimal.Decimal `json:"house-cleaning"`
	Gardener      *decimal.Decimal `json:"gardener"`
}

// UpdateRates overwrites the rates present in the body and keeps the others.
func (h *LedgerHandler) UpdateRates(c *gin.Context) {
	var req ratesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	rates := h.ctrl.Rates()
	for kind, value := range map[models.ServiceKind]*decimal.Decimal{
		models.Milk:          req.Milk,
		models.Water:         req.Water,
		models.HouseCleaning: req.HouseCleaning,
		models.Gardener:      req.Gardener,
	} {
		if value != nil {
			rates = rates.With(kind, *value)
		}
	}

	saved, err := h.ctrl.SaveRates(c.Request.Context(), rates)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// PurgeItem deletes the whole history of one service kind.
func (h *LedgerHandler) PurgeItem(c *gin.Context) {
	item, err := models.ParseServiceKind(c.Param("item"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.ctrl.PurgeItem(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseFilter reads ?item=&from=&to= from the query. Without any date bound
// the fallback window applies; ?period=all drops the window.
func parseFilter(c *gin.Context, fallback ledger.Filter) (ledger.Filter, error) {
	var filter ledger.Filter

	if raw := c.Query("item"); raw != "" && raw != "all" {
		item, err := models.ParseServiceKind(raw)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.Item = &item
	}

	from, to := c.Query("from"), c.Query("to")
	switch {
	case c.Query("period") == "all":
	case from == "" && to == "":
		filter.From, filter.To = fallback.From, fallback.To
	default:
		if from != "" {
			d, err := models.ParseDate(from)
			if err != nil {
				return ledger.Filter{}, err
			}
			filter.From = &d
		}
		if to != "" {
			d, err := models.ParseDate(to)
			if err != nil {
				return ledger.Filter{}, err
			}
			filter.To = &d
		}
	}

	return filter, nil
}
