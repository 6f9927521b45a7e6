package payment

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	"github.com/frahmantamala/travel-booking/internal/core/events"
	"github.com/frahmantamala/travel-booking/internal/paymentgateway"
	"github.com/frahmantamala/travel-booking/pkg/logger"
	"github.com/frahmantamala/travel-booking/pkg/metrics"
)

// RepositoryAPI is the record store for payments. Lookups return
// errors.ErrPaymentNotFound when no row matches.
type RepositoryAPI interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByID(ctx context.Context, id int64) (*payment.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*payment.Payment, error)
	MarkFailed(ctx context.Context, id int64, reason string, gatewayResponse json.RawMessage) error
	TransitionStatus(ctx context.Context, id int64, from, to string) error
	Delete(ctx context.Context, id int64) error
}

type GatewayAPI interface {
	InitializeTransaction(ctx context.Context, req paymentgateway.TransactionRequest) (*paymentgateway.InitializeResult, error)
	Currency() string
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// ServiceAPI is what the HTTP handler needs.
type ServiceAPI interface {
	Initiate(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, dto *UpdatePaymentStatusDTO) (*Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type Service struct {
	repo           RepositoryAPI
	gateway        GatewayAPI
	events         EventPublisher
	logger         *slog.Logger
	gatewayTimeout time.Duration
	newTxID        func() string
}

type ServiceOption func(*Service)

// WithTransactionIDGenerator replaces NewTransactionID, for tests.
func WithTransactionIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		s.newTxID = gen
	}
}

func WithEventPublisher(publisher EventPublisher) ServiceOption {
	return func(s *Service) {
		s.events = publisher
	}
}

func WithGatewayTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.gatewayTimeout = d
	}
}

func NewService(repo RepositoryAPI, gateway GatewayAPI, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:           repo,
		gateway:        gateway,
		logger:         logger,
		gatewayTimeout: 15 * time.Second,
		newTxID:        NewTransactionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const reconcileTimeout = 5 * time.Second

// Initiate records a pending payment, asks the gateway for a checkout
// session and reconciles the record with the outcome. The pending row is
// written before the gateway is contacted. Any gateway failure, including
// one where the provider could not be reached, leaves the row Failed.
func (s *Service) Initiate(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := req.Validate(); err != nil {
		metrics.IncInitiation(metrics.OutcomeRejected)
		return nil, err
	}

	record := &payment.Payment{
		BookingReference: req.BookingReference,
		Amount:           req.AmountValue,
		Currency:         s.gateway.Currency(),
		TransactionID:    s.newTxID(),
		Status:           payment.StatusPending,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.IncInitiation(metrics.OutcomeStoreError)
		log.Error("failed to create payment record",
			"error", err,
			"booking_reference", req.BookingReference)
		return nil, errors.NewInternalError("failed to create payment record", err)
	}

	log.Info("payment record created",
		"payment_id", record.ID,
		"transaction_id", record.TransactionID,
		"booking_reference", record.BookingReference)

	callCtx, cancel := errors.Detached(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.InitializeTransaction(callCtx, paymentgateway.TransactionRequest{
		Amount:      record.Amount,
		Email:       req.Email,
		FirstName:   req.Name,
		TxRef:       record.TransactionID,
		Title:       "Travel booking",
		Description: fmt.Sprintf("Payment for booking %s", record.BookingReference),
	})
	if err != nil {
		metrics.IncInitiation(metrics.OutcomeUnreachable)
		details := map[string]interface{}{"message": err.Error()}
		s.markFailed(ctx, record, err.Error(), details)
		return nil, errors.ErrGatewayUnreachable.WithCause(err).WithDetails(details)
	}

	if !result.Successful {
		metrics.IncInitiation(metrics.OutcomeFailed)
		s.markFailed(ctx, record, failureReason(result), result.Body)
		return nil, errors.ErrGatewayFailed.WithDetails(result.Body)
	}

	// The row is left Pending: the provider has only opened a checkout
	// session, settlement is confirmed out of band.
	metrics.IncInitiation(metrics.OutcomeInitiated)

	s.publish(ctx, events.NewPaymentInitiatedEvent(record.TransactionID, record.BookingReference, record.Amount, record.Currency, result.CheckoutURL))

	log.Info("payment initiated",
		"payment_id", record.ID,
		"transaction_id", record.TransactionID)

	return &InitiatePaymentResponse{
		Message:       InitiatedMessage,
		TransactionID: record.TransactionID,
		CheckoutURL:   result.CheckoutURL,
	}, nil
}

// markFailed runs on a detached context so the row is resolved even when
// the request context is already done.
func (s *Service) markFailed(ctx context.Context, record *payment.Payment, reason string, details interface{}) {
	log := logger.FromOr(ctx, s.logger)
	storeCtx, cancel := errors.Detached(ctx, reconcileTimeout)
	defer cancel()

	doc, err := json.Marshal(details)
	if err != nil {
		doc = nil
	}

	if err := s.repo.MarkFailed(storeCtx, record.ID, reason, doc); err != nil {
		log.Error("failed to mark payment as failed",
			"error", err,
			"payment_id", record.ID,
			"transaction_id", record.TransactionID)
	} else {
		record.Status = payment.StatusFailed
	}

	log.Warn("payment initiation failed",
		"payment_id", record.ID,
		"transaction_id", record.TransactionID,
		"reason", reason)

	s.publish(ctx, events.NewPaymentFailedEvent(record.TransactionID, record.BookingReference, record.Amount, reason))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, event)
}

func failureReason(result *paymentgateway.InitializeResult) string {
	if result.Message != "" {
		return result.Message
	}
	return fmt.Sprintf("gateway rejected transaction (HTTP %d)", result.StatusCode)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(p), nil
}

func (s *Service) ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, errors.NewValidationFieldError("status", "status must be one of Pending, Success, Failed", errors.ErrCodeInvalidStatus)
	}

	if filter.TransactionID != "" {
		return s.findByTransactionID(ctx, filter)
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list payments", "error", err)
		return nil, errors.NewInternalError("failed to list payments", err)
	}

	payments := make([]*Payment, 0, len(records))
	for _, r := range records {
		payments = append(payments, FromDataModel(r))
	}
	return payments, nil
}

// findByTransactionID answers a list query by transaction id. The other
// filters still apply, so a mismatch yields an empty page.
func (s *Service) findByTransactionID(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	record, err := s.repo.GetByTransactionID(ctx, filter.TransactionID)
	if err != nil {
		if stderrors.Is(err, errors.ErrPaymentNotFound) {
			return []*Payment{}, nil
		}
		s.logger.Error("failed to look up payment by transaction id", "error", err)
		return nil, errors.NewInternalError("failed to list payments", err)
	}

	switch {
	case filter.BookingReference != "" && record.BookingReference != filter.BookingReference,
		filter.Status != "" && record.Status != filter.Status,
		filter.Offset > 0:
		return []*Payment{}, nil
	}
	return []*Payment{FromDataModel(record)}, nil
}

// UpdatePaymentStatus is the manual reconciliation path: a pending payment
// may be settled as Success or Failed once.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, dto *UpdatePaymentStatusDTO) (*Payment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status == dto.Status {
		return FromDataModel(current), nil
	}

	if !CanTransition(current.Status, dto.Status) {
		return nil, errors.ErrInvalidTransition.WithDetails(map[string]string{
			"from": current.Status,
			"to":   dto.Status,
		})
	}

	if err := s.repo.TransitionStatus(ctx, id, current.Status, dto.Status); err != nil {
		return nil, err
	}

	s.logger.Info("payment status updated",
		"payment_id", id,
		"transaction_id", current.TransactionID,
		"old_status", current.Status,
		"new_status", dto.Status)

	return s.GetPayment(ctx, id)
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete payment", "error", err, "payment_id", id)
		return errors.NewInternalError("failed to delete payment", err)
	}
	return nil
}
