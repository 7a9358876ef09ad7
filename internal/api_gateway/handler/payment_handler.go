package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/payment-gateway/internal/api_gateway/middleware"
	"github.com/payment-gateway/internal/api_gateway/service"
)

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Initiate validates and processes a payment, reporting the assigned outcome
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body",
			"correlation_id", middleware.GetCorrelationID(c),
			"error", err,
		)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), &service.PaymentRequest{
		Payer:            req.Payer,
		Payee:            req.Payee,
		Amount:           req.Amount,
		Currency:         req.Currency,
		PaymentReference: req.PayerReference,
	})
	if err != nil {
		h.logger.Error("Failed to process payment",
			"correlation_id", middleware.GetCorrelationID(c),
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondWithOutcome(c, result.StatusCode, PaymentResponse{
		TransactionReference: result.TransactionReference.String(),
		StatusCode:           result.StatusCode,
		Message:              result.Message,
	})
}

// GetStatus retrieves the status of a stored payment, returns 404 if not found
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Warn("Invalid transaction reference", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction reference")
		return
	}

	txn, err := h.paymentService.GetTransactionStatus(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction status", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, TransactionStatusResponse{
		Reference: txn.ID.String(),
		Status:    string(txn.Status),
		CreatedAt: txn.CreatedAt.Format(time.RFC3339),
	})
}
