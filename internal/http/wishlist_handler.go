package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/store"
	"github.com/fjod/tradehub/internal/wishlist"
)

type WishlistHandler struct {
	wishlist *wishlist.Reconciler
	catalog  store.CatalogStore
	timeout  time.Duration
}

func NewWishlistHandler(wl *wishlist.Reconciler, catalog store.CatalogStore, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wl,
		catalog:  catalog,
		timeout:  timeout,
	}
}

type WishlistItemRequestDTO struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type WishlistResponse struct {
	Items []domain.WishlistEntry `json:"items"`
	Count int                    `json:"count"`
}

type ToggleResponse struct {
	ProductID  int64 `json:"product_id"`
	InWishlist bool  `json:"in_wishlist"`
}

func (h *WishlistHandler) view() WishlistResponse {
	return WishlistResponse{
		Items: h.wishlist.Items(),
		Count: h.wishlist.Count(),
	}
}

// resolve finds the current catalog product. A listing deleted from the
// catalog can still be resolved from its wishlist snapshot.
func (h *WishlistHandler) resolve(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := h.catalog.GetByID(ctx, id)
	if err != nil || p != nil {
		return p, err
	}
	for _, e := range h.wishlist.Items() {
		if e.Product.ID == id {
			return &e.Product, nil
		}
	}
	return nil, nil
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req WishlistItemRequestDTO
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

	added, err := h.wishlist.Add(ctx, *product)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, h.view())
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(ctx, productID); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	product, err := h.resolve(ctx, productID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	in, err := h.wishlist.Toggle(ctx, *product)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ToggleResponse{ProductID: productID, InWishlist: in})
}

func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}
	if !h.wishlist.Contains(productID) {
		respondError(w, http.StatusNotFound, "not_in_wishlist", "product is not in the wishlist")
		return
	}

	product, err := h.catalog.GetByID(ctx, productID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusConflict, "product_unavailable", "product is no longer listed")
		return
	}
	if product.Status != domain.StatusActive {
		respondError(w, http.StatusConflict, "product_unavailable", "product is "+string(product.Status))
		return
	}

	if err := h.wishlist.MoveToCart(ctx, *product); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.wishlist.Clear(ctx); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}
