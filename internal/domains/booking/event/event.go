package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"cowork/config"
	"cowork/infras/kafka"
	"cowork/infras/otel"
	"cowork/internal/domains/booking/model"
	"cowork/shared/constant"
	gModel "cowork/shared/model"
	"fmt"
	"time"
)

const (
	EventBookingConfirmed       = "booking.confirmed"
	EventReconciliationRequired = "booking.reconciliation_required"
)

type BookingConfirmed struct {
	BookingID       string            `json:"booking_id"`
	EmployerID      string            `json:"employer_id"`
	EmployeeID      string            `json:"employee_id,omitempty"`
	SpaceID         string            `json:"space_id"`
	PackageID       string            `json:"package_id"`
	Frequency       string            `json:"frequency"`
	BookingType     string            `json:"booking_type"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date,omitempty"`
	Duration        int               `json:"duration"`
	TotalAmount     int64             `json:"total_amount_cents"`
	Currency        string            `json:"currency"`
	PaymentFlow     model.PaymentFlow `json:"payment_flow"`
	PaymentID       string            `json:"payment_id,omitempty"`
	NextBillingDate string            `json:"next_billing_date,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// ReconciliationRequired describes a charge with no booking behind it.
type ReconciliationRequired struct {
	EmployerID     string              `json:"employer_id"`
	Payment        model.PaymentResult `json:"payment"`
	AmountCharged  gModel.Money        `json:"amount_charged_cents"`
	IdempotencyKey string              `json:"idempotency_key"`
	Metadata       map[string]string   `json:"metadata"`
	Reason         string              `json:"reason"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

type Publisher interface {
	BookingConfirmed(ctx context.Context, booking model.Booking) error
	ReconciliationRequired(ctx context.Context, employerID string, metadata map[string]string, fail *model.PostPaymentBookingFailure) error
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
	now    func() time.Time
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
		otel:   otel,
		now:    time.Now,
	}
}

func (p *publisherImpl) BookingConfirmed(ctx context.Context, booking model.Booking) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".BookingConfirmed")
	defer scope.End()
	defer scope.TraceIfError(&err)

	payload := BookingConfirmed{
		BookingID:   booking.ID,
		EmployerID:  booking.EmployerID,
		EmployeeID:  booking.EmployeeID.String,
		SpaceID:     booking.SpaceID,
		PackageID:   booking.PackageID,
		Frequency:   string(booking.Frequency),
		BookingType: string(booking.BookingType),
		StartDate:   booking.StartDate.Format(constant.CalendarFormat),
		Duration:    booking.Duration,
		TotalAmount: booking.TotalAmount.Cents(),
		Currency:    booking.Currency,
		PaymentFlow: booking.PaymentFlow,
		PaymentID:   booking.PaymentID,
		OccurredAt:  p.now().UTC(),
	}

	if booking.EndDate.Valid {
		payload.EndDate = booking.EndDate.Time.Format(constant.CalendarFormat)
	}

	if booking.NextBillingDate.Valid {
		payload.NextBillingDate = booking.NextBillingDate.Time.Format(constant.CalendarFormat)
	}

	err = p.client.SendMessages(ctx, p.cfg.Kafka.Topics.BookingConfirmed, kafka.Message{
		Key:       booking.EmployerID,
		EventType: EventBookingConfirmed,
		Value:     payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish booking confirmed: %w", err)
	}

	return nil
}

func (p *publisherImpl) ReconciliationRequired(
	ctx context.Context,
	employerID string,
	metadata map[string]string,
	fail *model.PostPaymentBookingFailure,
) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".ReconciliationRequired")
	defer scope.End()
	defer scope.TraceIfError(&err)

	reason := ""
	if fail.Err != nil {
		reason = fail.Err.Error()
	}

	err = p.client.SendMessages(ctx, p.cfg.Kafka.Topics.ReconciliationRequired, kafka.Message{
		Key:       fail.IdempotencyKey,
		EventType: EventReconciliationRequired,
		Value: ReconciliationRequired{
			EmployerID:     employerID,
			Payment:        fail.Payment,
			AmountCharged:  fail.Amount,
			IdempotencyKey: fail.IdempotencyKey,
			Metadata:       metadata,
			Reason:         reason,
			OccurredAt:     p.now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish reconciliation required: %w", err)
	}

	return nil
}
