package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/query"
	"github.com/fjod/tradehub/internal/store"
)

type CatalogHandler struct {
	engine  *query.Engine
	catalog store.CatalogStore
	timeout time.Duration
}

func NewCatalogHandler(engine *query.Engine, catalog store.CatalogStore, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		engine:  engine,
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

func productList(products []domain.Product) ProductListResponse {
	if products == nil {
		products = []domain.Product{}
	}
	return ProductListResponse{Products: products, Total: len(products)}
}

// sortParam reads the sort query parameter. An unknown key is rejected.
func sortParam(w http.ResponseWriter, r *http.Request, fallback query.SortKey) (query.SortKey, bool) {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return fallback, true
	}
	key := query.SortKey(raw)
	if !key.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_sort", "unknown sort key "+raw)
		return "", false
	}
	return key, true
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := sortParam(w, r, "")
	if !ok {
		return
	}

	products, err := h.engine.Active(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	query.Sort(products, key)

	respondJSON(w, http.StatusOK, productList(products))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.engine.Detail(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if detail == nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Search answers GET /search?q=&category=&condition=&min_price=&max_price=&sort=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := query.Filter{
		Category:  q.Get("category"),
		Condition: domain.Condition(q.Get("condition")),
	}
	if filter.Condition != "" && !filter.Condition.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_condition", "unknown condition "+string(filter.Condition))
		return
	}

	var err error
	if filter.MinPrice, err = decimalParam(r, "min_price"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}
	if filter.MaxPrice, err = decimalParam(r, "max_price"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	key, ok := sortParam(w, r, "")
	if !ok {
		return
	}

	products, err := h.engine.Search(ctx, strings.TrimSpace(q.Get("q")), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	query.Sort(products, key)

	respondJSON(w, http.StatusOK, productList(products))
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categoryID := chi.URLParam(r, "id")
	key, ok := sortParam(w, r, "")
	if !ok {
		return
	}

	category, err := h.catalog.Category(ctx, categoryID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "category_not_found", "category not found")
		return
	}

	products, err := h.engine.ByCategory(ctx, categoryID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	query.Sort(products, key)

	respondJSON(w, http.StatusOK, productList(products))
}

func (h *CatalogHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sellers, err := h.catalog.Sellers(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sellers)
}

func (h *CatalogHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	seller, err := h.catalog.Seller(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if seller == nil {
		respondError(w, http.StatusNotFound, "seller_not_found", "seller not found")
		return
	}

	respondJSON(w, http.StatusOK, seller)
}
