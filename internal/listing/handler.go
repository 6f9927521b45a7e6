package listing

import (
	"net/http"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

var errInvalidListingID = errors.NewValidationError("invalid listing ID", errors.ErrCodeValidationFailed)

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	listings, err := h.Service.ListListings(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("ListListings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListingsResponse{
		Listings: listings,
		Limit:    limit,
		Offset:   offset,
	})
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidListingID)
		return
	}

	listing, err := h.Service.GetListing(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var dto ListingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	listing, err := h.Service.CreateListing(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateListing: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, listing)
}

// ReplaceListing handles PUT /listings/{id}.
func (h *Handler) ReplaceListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidListingID)
		return
	}

	var dto ListingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	listing, err := h.Service.ReplaceListing(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("ReplaceListing: service error", "error", err, "listing_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, listing)
}

// PatchListing handles PATCH /listings/{id}.
func (h *Handler) PatchListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidListingID)
		return
	}

	var dto PatchListingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	listing, err := h.Service.PatchListing(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("PatchListing: service error", "error", err, "listing_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidListingID)
		return
	}

	if err := h.Service.DeleteListing(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
