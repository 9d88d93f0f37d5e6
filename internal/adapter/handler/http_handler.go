package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logs"
)

const (
	userIDHeader          = "X-User-ID"
	maxShippingAddressLen = 500
)

// CartService is the cart surface the handler consumes.
type CartService interface {
	SetQuantity(ctx context.Context, userID, productID int64, qty int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) ([]domain.CartItem, decimal.Decimal, error)
}

// OrderService is the checkout/order surface the handler consumes.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, shippingAddress string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID string, userID int64) error
	Get(ctx context.Context, orderID string, userID int64) (*domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
}

type HTTPHandler struct {
	cartService  CartService
	orderService OrderService
	logger       logs.Logger
}

func NewHTTPHandler(cartService CartService, orderService OrderService, logger logs.Logger) *HTTPHandler {
	return &HTTPHandler{
		cartService:  cartService,
		orderService: orderService,
		logger:       logger,
	}
}

func (h *HTTPHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart", h.AddToCart)
	mux.HandleFunc("PUT /api/cart/{productId}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/{productId}", h.RemoveFromCart)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{id}/cancel", h.CancelOrder)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type cartItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total string             `json:"total"`
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type placeOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type orderLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	CreatedAt       string              `json:"created_at"`
	TotalAmount     string              `json:"total_amount"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shipping_address"`
	ShippedAt       *string             `json:"shipped_at,omitempty"`
	DeliveredAt     *string             `json:"delivered_at,omitempty"`
	Lines           []orderLineResponse `json:"lines"`
}

func newOrderResponse(order *domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal().StringFixed(2),
		})
	}

	resp := orderResponse{
		ID:              order.ID,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		Lines:           lines,
	}
	if order.ShippedAt != nil {
		s := order.ShippedAt.Format(time.RFC3339)
		resp.ShippedAt = &s
	}
	if order.DeliveredAt != nil {
		s := order.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &s
	}
	return resp
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	items, total, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to read cart", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := cartResponse{Items: make([]cartItemResponse, 0, len(items)), Total: total.StringFixed(2)}
	for _, item := range items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ProductID <= 0 || req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "product_id and quantity must be positive"})
		return
	}

	if err := h.cartService.SetQuantity(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.writeCartMutationError(w, err, userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// Quantity 0 (or below) removes the entry.
	if err := h.cartService.SetQuantity(r.Context(), userID, productID, req.Quantity); err != nil {
		h.writeCartMutationError(w, err, userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, productID); err != nil {
		h.logger.Error("failed to remove cart entry", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ShippingAddress == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "shipping_address is required"})
		return
	}
	if len(req.ShippingAddress) > maxShippingAddressLen {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "shipping_address too long"})
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("checkout failed", "error", err, "user_id", userID)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
			return
		}
		h.logger.Error("failed to get order", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	err := h.orderService.Cancel(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "order can no longer be cancelled"})
		default:
			h.logger.Error("failed to cancel order", "error", err, "user_id", userID)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userID resolves the authenticated user from the X-User-ID header set by
// the surrounding system; the core never resolves identity itself.
func (h *HTTPHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get(userIDHeader), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid user identity"})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeCartMutationError(w http.ResponseWriter, err error, userID int64) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("cart mutation failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
