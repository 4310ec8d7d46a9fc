package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/tradehub/internal/cart"
	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/store"
)

type CartHandler struct {
	cart    *cart.Aggregator
	catalog store.CatalogStore
	timeout time.Duration
}

func NewCartHandler(c *cart.Aggregator, catalog store.CatalogStore, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    c,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

type CartResponse struct {
	Lines  []domain.CartLine `json:"lines"`
	Count  int               `json:"count"`
	Totals domain.Totals     `json:"totals"`
}

func (h *CartHandler) view() CartResponse {
	return CartResponse{
		Lines:  h.cart.Lines(),
		Count:  h.cart.Count(),
		Totals: h.cart.Totals(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeRequest(w, r, &req) {
		return
	}

	product, err := h.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if product.Status != domain.StatusActive {
		respondError(w, http.StatusConflict, "product_unavailable", "product is "+string(product.Status))
		return
	}

	if err := h.cart.Add(ctx, *product, req.Quantity); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.view())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.cart.UpdateQuantity(ctx, productID, req.Quantity); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	if err := h.cart.Remove(ctx, productID); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	receipt, err := h.cart.Checkout(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}
