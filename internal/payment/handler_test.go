package payment_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"

	paymentDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	"github.com/frahmantamala/travel-booking/internal/payment"
	paymentPostgres "github.com/frahmantamala/travel-booking/internal/payment/postgres"
	"github.com/frahmantamala/travel-booking/internal/paymentgateway"
	"github.com/frahmantamala/travel-booking/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubProvider mimics the gateway's initialize endpoint.
type stubProvider struct {
	mu         sync.Mutex
	status     int
	body       string
	authHeader string
	payload    map[string]interface{}
	calls      int
}

func (s *stubProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.authHeader = r.Header.Get("Authorization")
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &s.payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = io.WriteString(w, s.body)
}

var _ = Describe("Payment Handler Integration", func() {
	var (
		db       *gorm.DB
		provider *stubProvider
		server   *httptest.Server
		router   chi.Router
		slogger  *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&paymentDatamodel.Payment{})).To(Succeed())

		provider = &stubProvider{
			status: http.StatusOK,
			body:   `{"message":"Hosted Link","status":"success","data":{"checkout_url":"https://pay.example/abc"}}`,
		}
		server = httptest.NewServer(provider)
		DeferCleanup(server.Close)

		client := paymentgateway.NewClient(paymentgateway.Config{
			BaseURL:     server.URL,
			SecretKey:   "CHASECK_TEST-secret",
			CallbackURL: "http://localhost:8080/api/payments/callback",
			Currency:    "ETB",
		}, slogger)

		repo := paymentPostgres.NewPaymentRepository(db)
		service := payment.NewService(repo, client, slogger)
		handler := payment.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Post("/api/payments/initiate", handler.InitiatePayment)
		router.Get("/api/payments", handler.ListPayments)
		router.Get("/api/payments/{id}", handler.GetPayment)
		router.Patch("/api/payments/{id}", handler.UpdatePayment)
		router.Delete("/api/payments/{id}", handler.DeletePayment)
	})

	postForm := func(values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	validForm := func() url.Values {
		return url.Values{
			"booking_reference": {"BK-1"},
			"amount":            {"100"},
			"email":             {"a@b.com"},
			"name":              {"Ada"},
		}
	}

	storedPayments := func() []paymentDatamodel.Payment {
		var rows []paymentDatamodel.Payment
		Expect(db.Find(&rows).Error).NotTo(HaveOccurred())
		return rows
	}

	decode := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body
	}

	Describe("POST /api/payments/initiate", func() {
		It("should initiate a payment from a form body", func() {
			w := postForm(validForm())

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			body := decode(w)
			Expect(body).To(HaveKeyWithValue("message", "Payment initiated successfully."))
			Expect(body).To(HaveKeyWithValue("checkout_url", "https://pay.example/abc"))
			Expect(body["transaction_id"]).To(MatchRegexp(`^TX-[0-9a-f]{16}$`))

			rows := storedPayments()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal(paymentDatamodel.StatusPending))
			Expect(rows[0].TransactionID).To(Equal(body["transaction_id"]))
		})

		It("should send the bearer secret and payload to the provider", func() {
			w := postForm(validForm())
			Expect(w.Code).To(Equal(http.StatusOK))

			Expect(provider.authHeader).To(Equal("Bearer CHASECK_TEST-secret"))
			Expect(provider.payload).To(HaveKeyWithValue("currency", "ETB"))
			Expect(provider.payload).To(HaveKeyWithValue("email", "a@b.com"))
			Expect(provider.payload).To(HaveKeyWithValue("first_name", "Ada"))
			Expect(provider.payload).To(HaveKeyWithValue("callback_url", "http://localhost:8080/api/payments/callback"))
			Expect(provider.payload).To(HaveKey("tx_ref"))
			Expect(provider.payload["customization"]).To(HaveKeyWithValue("description", ContainSubstring("BK-1")))
		})

		It("should accept a JSON body with a numeric amount", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/payments/initiate",
				strings.NewReader(`{"booking_reference":"BK-1","amount":250.75,"email":"a@b.com","name":"Ada"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			rows := storedPayments()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Amount.String()).To(Equal("250.75"))
		})

		It("should reject a request with a missing field", func() {
			form := validForm()
			form.Del("email")

			w := postForm(form)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)).To(Equal(map[string]interface{}{"error": "Missing required fields"}))
			Expect(storedPayments()).To(BeEmpty())
			Expect(provider.calls).To(Equal(0))
		})

		DescribeTable("should treat JSON values that are not strings or numbers as missing",
			func(body string) {
				req := httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(decode(w)).To(Equal(map[string]interface{}{"error": "Missing required fields"}))
				Expect(storedPayments()).To(BeEmpty())
				Expect(provider.calls).To(Equal(0))
			},
			Entry("array reference", `{"booking_reference":["BK-1"],"amount":"100","email":"a@b.com","name":"Ada"}`),
			Entry("object reference", `{"booking_reference":{"ref":"BK-1"},"amount":"100","email":"a@b.com","name":"Ada"}`),
			Entry("bool email", `{"booking_reference":"BK-1","amount":"100","email":true,"name":"Ada"}`),
			Entry("null name", `{"booking_reference":"BK-1","amount":"100","email":"a@b.com","name":null}`),
		)

		It("should reject an invalid amount", func() {
			form := validForm()
			form.Set("amount", "-3")

			w := postForm(form)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)).To(Equal(map[string]interface{}{"error": "Invalid amount"}))
			Expect(storedPayments()).To(BeEmpty())
		})

		It("should mark the payment failed and relay the provider body", func() {
			provider.status = http.StatusUnauthorized
			provider.body = `{"message":"Invalid API Key","status":"failed","data":null}`

			w := postForm(validForm())

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			body := decode(w)
			Expect(body).To(HaveKeyWithValue("error", "Failed to initiate payment."))
			Expect(body["details"]).To(HaveKeyWithValue("message", "Invalid API Key"))
			Expect(body["details"]).To(HaveKeyWithValue("status", "failed"))

			rows := storedPayments()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal(paymentDatamodel.StatusFailed))
		})

		It("should treat a success status without checkout url as a failure", func() {
			provider.body = `{"status":"success","data":{}}`

			w := postForm(validForm())

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(storedPayments()[0].Status).To(Equal(paymentDatamodel.StatusFailed))
		})

		It("should mark the payment failed when the provider is unreachable", func() {
			server.Close()

			w := postForm(validForm())

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			body := decode(w)
			Expect(body).To(HaveKeyWithValue("error", "Failed to initiate payment."))
			Expect(body["details"]).To(HaveKey("message"))

			rows := storedPayments()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal(paymentDatamodel.StatusFailed))
		})
	})

	Describe("payment resources", func() {
		var id string

		BeforeEach(func() {
			w := postForm(validForm())
			Expect(w.Code).To(Equal(http.StatusOK))
			id = "1"
		})

		It("should list payments filtered by booking reference", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/payments?booking_reference=BK-1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp payment.PaymentsResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Payments).To(HaveLen(1))
			Expect(resp.Limit).To(Equal(20))
		})

		It("should find a payment by transaction id", func() {
			txID := storedPayments()[0].TransactionID

			req := httptest.NewRequest(http.MethodGet, "/api/payments?transaction_id="+txID, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp payment.PaymentsResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Payments).To(HaveLen(1))
			Expect(resp.Payments[0].TransactionID).To(Equal(txID))

			req = httptest.NewRequest(http.MethodGet, "/api/payments?transaction_id=TX-unknown", nil)
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"payments":[]`))
		})

		It("should get a payment by id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/payments/"+id, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)).To(HaveKeyWithValue("status", "Pending"))
		})

		It("should return 404 for an unknown payment", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/payments/999", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["error"]).To(HaveKeyWithValue("code", "PAYMENT_NOT_FOUND"))
		})

		It("should settle a pending payment via PATCH", func() {
			req := httptest.NewRequest(http.MethodPatch, "/api/payments/"+id, strings.NewReader(`{"status":"Success"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)).To(HaveKeyWithValue("status", "Success"))
		})

		It("should delete a payment", func() {
			req := httptest.NewRequest(http.MethodDelete, "/api/payments/"+id, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(storedPayments()).To(BeEmpty())
		})
	})
})
