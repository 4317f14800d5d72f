package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/fjod/rocketshoes-cart/internal/service"
	"github.com/go-chi/chi/v5"
)

// CartService is the part of the cart store the HTTP layer needs.
type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, req service.UpdateProductAmount) error
	SetProductAmount(ctx context.Context, productID int64, amount int) error
}

type CartHandler struct {
	cart    CartService
	timeout time.Duration
	log     *logger.Logger
}

func NewCartHandler(cart CartService, timeout time.Duration, log *logger.Logger) *CartHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// AmountRequestDTO is shared by the step and set endpoints. A pointer keeps
// an explicit 0 distinguishable from a missing field.
type AmountRequestDTO struct {
	Amount *int `json:"amount" validate:"required"`
}

type CartResponse struct {
	Items domain.Cart `json:"items"`
	Size  int         `json:"size"`
	Total string      `json:"total"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func newCartResponse(cart domain.Cart) CartResponse {
	if cart == nil {
		cart = domain.Cart{}
	}
	return CartResponse{
		Items: cart,
		Size:  cart.Size(),
		Total: cart.Total().StringFixed(2),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newCartResponse(h.cart.Cart()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSONBody(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.cart.AddProduct(ctx, req.ProductID); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newCartResponse(h.cart.Cart()))
}

// StepAmount moves the line one unit toward the requested amount.
func (h *CartHandler) StepAmount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req AmountRequestDTO
	if err := decodeJSONBody(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	err := h.cart.UpdateProductAmount(ctx, service.UpdateProductAmount{
		ProductID: productID,
		Amount:    *req.Amount,
	})
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(h.cart.Cart()))
}

func (h *CartHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req AmountRequestDTO
	if err := decodeJSONBody(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.cart.SetProductAmount(ctx, productID, *req.Amount); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(h.cart.Cart()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveProduct(ctx, productID); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(h.cart.Cart()))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func (h *CartHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(ctx, "cart operation failed", err)
	}

	message := "internal server error"
	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		message = opErr.Message()
	}
	respondError(w, status, code, message)
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, service.ErrOutOfStock):
		return http.StatusConflict, "out_of_stock"
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, "persistence_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
