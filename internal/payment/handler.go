package payment

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/transport"
)

const maxFormMemory = 1 << 20

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

// InitiatePayment handles POST /payments/initiate. The body is form-encoded
// or JSON; both carry booking_reference, amount, email and name.
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	req := bindInitiateRequest(r)

	resp, err := h.Service.Initiate(r.Context(), req)
	if err != nil {
		h.writeInitiateError(w, err, req)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// writeInitiateError keeps the flat {"error", "details"} shape clients of
// this endpoint rely on instead of the AppError envelope.
func (h *Handler) writeInitiateError(w http.ResponseWriter, err error, req *InitiatePaymentRequest) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		h.Logger.Error("InitiatePayment: unexpected error", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create payment record.",
		})
		return
	}

	switch appErr.Code {
	case errors.ErrCodeGatewayFailed, errors.ErrCodeGatewayUnreachable:
		h.Logger.Warn("InitiatePayment: gateway failure",
			"code", appErr.Code,
			"booking_reference", req.BookingReference)
		h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
			"error":   appErr.Message,
			"details": appErr.Details,
		})
	case errors.ErrCodeInternal:
		h.Logger.Error("InitiatePayment: store failure", "error", appErr)
		h.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create payment record.",
		})
	default:
		h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
			"error": appErr.Message,
		})
	}
}

// bindInitiateRequest never fails: an unreadable body yields empty fields,
// which validation then rejects as missing.
func bindInitiateRequest(r *http.Request) *InitiatePaymentRequest {
	req := &InitiatePaymentRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var body map[string]interface{}
		if err := dec.Decode(&body); err != nil {
			return req
		}
		req.BookingReference = stringField(body, "booking_reference")
		req.Amount = stringField(body, "amount")
		req.Email = stringField(body, "email")
		req.Name = stringField(body, "name")
		return req
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		_ = r.ParseMultipartForm(maxFormMemory)
	} else {
		_ = r.ParseForm()
	}
	req.BookingReference = r.PostFormValue("booking_reference")
	req.Amount = r.PostFormValue("amount")
	req.Email = r.PostFormValue("email")
	req.Name = r.PostFormValue("name")
	return req
}

// stringField accepts strings and JSON numbers; anything else counts as
// absent.
func stringField(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// ListPayments handles GET /payments?booking_reference=&status=
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		BookingReference: r.URL.Query().Get("booking_reference"),
		Status:           r.URL.Query().Get("status"),
		TransactionID:    r.URL.Query().Get("transaction_id"),
		Limit:            limit,
		Offset:           offset,
	}

	payments, err := h.Service.ListPayments(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListPayments: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PaymentsResponse{
		Payments: payments,
		Limit:    limit,
		Offset:   offset,
	})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errors.NewValidationError("invalid payment ID", errors.ErrCodeValidationFailed))
		return
	}

	p, err := h.Service.GetPayment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// UpdatePayment handles PATCH /payments/{id}; only status may change.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errors.NewValidationError("invalid payment ID", errors.ErrCodeValidationFailed))
		return
	}

	var dto UpdatePaymentStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.UpdatePaymentStatus(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("UpdatePayment: service error", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(r, "id")
	if !ok {
		h.HandleError(w, errors.NewValidationError("invalid payment ID", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.DeletePayment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
