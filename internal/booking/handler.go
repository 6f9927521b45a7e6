package booking

import (
	"net/http"
	"strconv"

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

var errInvalidBookingID = errors.NewValidationError("invalid booking ID", errors.ErrCodeValidationFailed)

// ListBookings handles GET /bookings?listing_id=&status=
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}

	if listingID := r.URL.Query().Get("listing_id"); listingID != "" {
		id, err := strconv.ParseInt(listingID, 10, 64)
		if err != nil {
			h.HandleError(w, errors.NewValidationFieldError("listing_id", "listing_id must be numeric", errors.ErrCodeValidationFailed))
			return
		}
		filter.ListingID = id
	}

	bookings, err := h.Service.ListBookings(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListBookings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BookingsResponse{
		Bookings: bookings,
		Limit:    limit,
		Offset:   offset,
	})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidBookingID)
		return
	}

	booking, err := h.Service.GetBooking(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var dto BookingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	booking, err := h.Service.CreateBooking(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateBooking: service error", "error", err, "listing_id", dto.ListingID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, booking)
}

func (h *Handler) ReplaceBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidBookingID)
		return
	}

	var dto BookingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	booking, err := h.Service.ReplaceBooking(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("ReplaceBooking: service error", "error", err, "booking_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) PatchBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidBookingID)
		return
	}

	var dto PatchBookingDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	booking, err := h.Service.PatchBooking(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("PatchBooking: service error", "error", err, "booking_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errInvalidBookingID)
		return
	}

	if err := h.Service.DeleteBooking(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
