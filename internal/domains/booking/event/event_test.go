package event_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cowork/config"
	"cowork/infras/kafka"
	kafkaMocks "cowork/infras/kafka/mocks"
	"cowork/infras/otel/mocks"
	"cowork/internal/domains/booking/event"
	"cowork/internal/domains/booking/model"
)

func newPublisher(t *testing.T) (event.Publisher, *kafkaMocks.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topics.BookingConfirmed = "booking.confirmed"
	cfg.Kafka.Topics.ReconciliationRequired = "booking.reconciliation_required"

	return event.New(client, cfg, mocks.NewOtel()), client
}

func TestPublisher_BookingConfirmed(t *testing.T) {
	publisher, client := newPublisher(t)

	booking := model.Booking{
		ID:              "booking-1",
		EmployerID:      "employer-1",
		SpaceID:         "space-1",
		PackageID:       "pkg-1",
		Frequency:       model.FrequencyOngoing,
		BookingType:     model.TypePerDay,
		StartDate:       time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Duration:        9,
		TotalAmount:     30000,
		Currency:        "usd",
		PaymentFlow:     model.FlowRecurringSubscription,
		PaymentID:       "sub_1",
		NextBillingDate: sql.NullTime{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Valid: true},
	}

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.confirmed", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			require.Len(t, messages, 1)
			assert.Equal(t, "employer-1", messages[0].Key)
			assert.Equal(t, event.EventBookingConfirmed, messages[0].EventType)

			payload, ok := messages[0].Value.(event.BookingConfirmed)
			require.True(t, ok)
			assert.Equal(t, "2024-03-20", payload.StartDate)
			assert.Empty(t, payload.EndDate)
			assert.Equal(t, "2024-04-01", payload.NextBillingDate)
			assert.Equal(t, int64(30000), payload.TotalAmount)

			return nil
		})

	assert.NoError(t, publisher.BookingConfirmed(context.Background(), booking))
}

func TestPublisher_ReconciliationRequired(t *testing.T) {
	publisher, client := newPublisher(t)

	fail := &model.PostPaymentBookingFailure{
		Payment:        model.PaymentResult{ID: "pi_1", Status: model.PaymentStatusSucceeded, Kind: model.FlowOneTimeCharge},
		Amount:         30000,
		IdempotencyKey: "key-1",
		Err:            errors.New("connection reset"),
	}

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.reconciliation_required", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			payload, ok := messages[0].Value.(event.ReconciliationRequired)
			require.True(t, ok)
			assert.Equal(t, "key-1", messages[0].Key)
			assert.Equal(t, "pi_1", payload.Payment.ID)
			assert.Equal(t, "connection reset", payload.Reason)
			assert.Equal(t, "pkg-1", payload.Metadata[model.MetaPackageID])

			return errors.New("broker unavailable")
		})

	err := publisher.ReconciliationRequired(context.Background(), "employer-1", map[string]string{model.MetaPackageID: "pkg-1"}, fail)

	assert.Error(t, err)
}
