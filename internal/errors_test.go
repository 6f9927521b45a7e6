package internal

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("should report the first field message for validation errors", func() {
		err := NewValidationFieldError("check_in", "check_in must be a date", ErrCodeInvalidDate)

		Expect(err.Error()).To(Equal("check_in must be a date"))
	})

	It("should match sentinels by code through wrapping", func() {
		wrapped := fmt.Errorf("lookup: %w", ErrPaymentNotFound.WithCause(stderrors.New("no rows")))

		Expect(stderrors.Is(wrapped, ErrPaymentNotFound)).To(BeTrue())
		Expect(stderrors.Is(wrapped, ErrBookingNotFound)).To(BeFalse())
	})

	It("should render idempotency conflicts in the error envelope", func() {
		status, body := ErrIdempotencyReused.ToHTTPResponse()
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(string(raw)).To(ContainSubstring(`"code":"IDEMPOTENCY_KEY_REUSED"`))
		Expect(ErrRequestInProgress.StatusCode).To(Equal(http.StatusConflict))
	})
})
