package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/tradehub/internal/bulk"
	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/listing"
	"github.com/fjod/tradehub/internal/query"
)

// ListingHandler serves the seller side: the create wizard and "my listings".
type ListingHandler struct {
	manager  *listing.Manager
	engine   *query.Engine
	bulk     *bulk.Coordinator
	sellerID string
	timeout  time.Duration
}

func NewListingHandler(manager *listing.Manager, engine *query.Engine, coordinator *bulk.Coordinator, sellerID string, timeout time.Duration) *ListingHandler {
	return &ListingHandler{
		manager:  manager,
		engine:   engine,
		bulk:     coordinator,
		sellerID: sellerID,
		timeout:  timeout,
	}
}

// DraftPatchRequestDTO updates a draft; nil fields are left untouched.
type DraftPatchRequestDTO struct {
	Category    *string  `json:"category"`
	Title       *string  `json:"title" validate:"omitempty,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *string  `json:"price"`
	Condition   *string  `json:"condition"`
	Location    *string  `json:"location" validate:"omitempty,max=120"`
	Images      []string `json:"images" validate:"omitempty,max=10"`
	AddTags     []string `json:"add_tags" validate:"omitempty,dive,max=40"`
	RemoveTags  []string `json:"remove_tags"`
}

type BulkRequestDTO struct {
	Action string  `json:"action" validate:"required,oneof=delete mark_sold promote"`
	IDs    []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type BulkResponse struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

func (h *ListingHandler) draft(w http.ResponseWriter, r *http.Request) (*listing.Draft, bool) {
	d, ok := h.manager.Drafts().Get(chi.URLParam(r, "id"))
	if !ok || d.SellerID() != h.sellerID {
		respondError(w, http.StatusNotFound, "draft_not_found", "draft not found")
		return nil, false
	}
	return d, true
}

func (h *ListingHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d := h.manager.Drafts().Create(h.sellerID)
	respondJSON(w, http.StatusCreated, d.View())
}

func (h *ListingHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d.View())
}

func (h *ListingHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}

	var req DraftPatchRequestDTO
	if !decodeRequest(w, r, &req) {
		return
	}

	fields := []struct {
		field listing.Field
		value *string
	}{
		{listing.FieldCategory, req.Category},
		{listing.FieldTitle, req.Title},
		{listing.FieldDescription, req.Description},
		{listing.FieldPrice, req.Price},
		{listing.FieldCondition, req.Condition},
		{listing.FieldLocation, req.Location},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := d.Set(f.field, *f.value); err != nil {
			handleDomainError(w, err)
			return
		}
	}
	if req.Images != nil {
		d.SetImages(req.Images)
	}
	for _, tag := range req.AddTags {
		d.AddTag(tag)
	}
	for _, tag := range req.RemoveTags {
		d.RemoveTag(tag)
	}

	respondJSON(w, http.StatusOK, d.View())
}

func (h *ListingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	if err := d.Next(); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d.View())
}

func (h *ListingHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	d.Back()
	respondJSON(w, http.StatusOK, d.View())
}

func (h *ListingHandler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	d, ok := h.draft(w, r)
	if !ok {
		return
	}

	product, err := h.manager.Publish(ctx, d)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// MyListings answers GET /my-listings?status=&q=&sort=. Sorting defaults to newest.
func (h *ListingHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := r.URL.Query().Get("status")
	if status != "" && status != query.StatusAll && !domain.ProductStatus(status).Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown listing status "+status)
		return
	}
	key, ok := sortParam(w, r, query.SortNewest)
	if !ok {
		return
	}

	products, err := h.engine.MyListings(ctx, h.sellerID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	products = query.FilterListings(products, status, strings.TrimSpace(r.URL.Query().Get("q")))
	query.Sort(products, key)

	respondJSON(w, http.StatusOK, productList(products))
}

func (h *ListingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.engine.MyListings(ctx, h.sellerID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, query.Stats(products))
}

// productAction runs a single-listing action that reports a missing id as nil.
func (h *ListingHandler) productAction(status int, action func(ctx context.Context, id int64) (*domain.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		product, err := action(ctx, id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if product == nil {
			respondError(w, http.StatusNotFound, "listing_not_found", "listing not found")
			return
		}

		respondJSON(w, status, product)
	}
}

func (h *ListingHandler) MarkAsSold(w http.ResponseWriter, r *http.Request) {
	h.productAction(http.StatusOK, h.manager.MarkAsSold)(w, r)
}

func (h *ListingHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.productAction(http.StatusOK, h.manager.Promote)(w, r)
}

func (h *ListingHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	h.productAction(http.StatusCreated, h.manager.Duplicate)(w, r)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if !decodeRequest(w, r, &patch) {
		return
	}
	h.productAction(http.StatusOK, func(ctx context.Context, id int64) (*domain.Product, error) {
		return h.manager.Update(ctx, id, patch)
	})(w, r)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.manager.Delete(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "listing_not_found", "listing not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req BulkRequestDTO
	if !decodeRequest(w, r, &req) {
		return
	}

	n, err := h.bulk.Apply(ctx, bulk.Action(req.Action), req.IDs)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BulkResponse{Action: req.Action, Affected: n})
}
