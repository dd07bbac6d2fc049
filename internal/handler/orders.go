package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brewline/queue-api/internal/order"
	"github.com/brewline/queue-api/internal/service"
)

// QueueServicer defines the service methods needed by the order handlers.
// Satisfied by *service.QueueService; narrow interface for testability.
type QueueServicer interface {
	Submit(ctx context.Context, req service.SubmitRequest) (service.OrderView, error)
	StartNext(ctx context.Context) (service.OrderView, error)
	Complete(ctx context.Context, id uuid.UUID) (service.OrderView, error)
	Cancel(ctx context.Context, id uuid.UUID) (service.OrderView, error)
	CustomerOrders(name string) []service.OrderView
}

// OrderHandler handles order submission and staff actions.
type OrderHandler struct {
	svc    QueueServicer
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc QueueServicer, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{svc: svc, logger: logger.Named("orders")}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted under /api.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Post("/orders/next", h.StartNext)
	r.Post("/orders/{id}/complete", h.Complete)
	r.Delete("/orders/{id}/cancel", h.Cancel)
	r.Get("/customer/{name}/orders", h.CustomerOrders)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName string   `json:"customer_name"`
	Items        []string `json:"items"`
	Priority     string   `json:"priority"`
}

type orderResultResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Order   service.OrderView `json:"order"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, err := h.svc.Submit(r.Context(), service.SubmitRequest{
		CustomerName: req.CustomerName,
		Items:        req.Items,
		Priority:     req.Priority,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("submit order", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, orderResultResponse{
		Success: true,
		Message: fmt.Sprintf("Order placed! You are number %d in the queue.", view.PositionInQueue),
		Order:   view,
	})
}

// StartNext handles POST /api/orders/next. An empty queue is not an error at
// this boundary: the dashboard branches on the success flag.
func (h *OrderHandler) StartNext(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.StartNext(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrQueueEmpty) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "No orders in queue",
			})
			return
		}
		if errors.Is(err, service.ErrAlreadyPreparing) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("start next order", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orderResultResponse{Success: true, Order: view})
}

// Complete handles POST /api/orders/{id}/complete.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	view, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		h.writeActionError(w, "complete order", err)
		return
	}

	writeJSON(w, http.StatusOK, orderResultResponse{
		Success: true,
		Message: "Order completed",
		Order:   view,
	})
}

// Cancel handles DELETE /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	view, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		h.writeActionError(w, "cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, orderResultResponse{
		Success: true,
		Message: "Order cancelled",
		Order:   view,
	})
}

// CustomerOrders handles GET /api/customer/{name}/orders.
func (h *OrderHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	orders := h.svc.CustomerOrders(name)
	if orders == nil {
		orders = []service.OrderView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// writeActionError maps service errors for complete/cancel to HTTP codes.
func (h *OrderHandler) writeActionError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotPreparing),
		errors.Is(err, service.ErrNotQueued),
		errors.Is(err, service.ErrAlreadyTerminal):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.logger.Error(action, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// isValidationError checks if the error is a known validation error from the
// service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyName) ||
		errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, order.ErrInvalidPriority)
}
