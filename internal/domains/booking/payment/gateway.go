package payment

//go:generate go run go.uber.org/mock/mockgen -source=./gateway.go -destination=../mocks/gateway_mock.go -package=mocks

import (
	"context"

	"cowork/internal/domains/booking/model"
)

// Gateway is the payment provider. Implementations must deduplicate on
// PaymentIntentSpec.IdempotencyKey.
type Gateway interface {
	TokenizeCard(ctx context.Context, card model.CardDetails, address model.BillingAddress, customer model.Customer) (model.PaymentMethodRef, error)
	ChargeOnce(ctx context.Context, spec model.PaymentIntentSpec, method model.PaymentMethodRef) (model.PaymentResult, error)
	CreateSubscription(ctx context.Context, spec model.PaymentIntentSpec, method model.PaymentMethodRef) (model.PaymentResult, error)
}
