package stripe

import (
	"context"
	"cowork/config"
	"cowork/infras/otel"
	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/payment"
	"cowork/shared/constant"
	gModel "cowork/shared/model"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	gostripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	metaEmployerID = "employer_id"

	keySuffixCharge       = ":charge"
	keySuffixPrice        = ":price"
	keySuffixSubscription = ":subscription"
	keySuffixFirstCycle   = ":first_cycle"

	allowRedirectsNever      = "never"
	paymentBehaviorNoPartial = "error_if_incomplete"
	prorationNone            = "none"
)

type gatewayImpl struct {
	api  *client.API
	otel otel.Otel
}

// New returns the card payment gateway. Every provider write carries an
// idempotency key derived from the booking attempt and is sent exactly once;
// the client's network retries are disabled.
func New(cfg *config.Config, otel otel.Otel) payment.Gateway {
	backendConfig := &gostripe.BackendConfig{
		MaxNetworkRetries: gostripe.Int64(0),
		LeveledLogger:     &gostripe.LeveledLogger{Level: gostripe.LevelError},
	}

	if cfg.Payment.Stripe.URL != constant.Empty {
		backendConfig.URL = gostripe.String(cfg.Payment.Stripe.URL)
	}

	backends := &gostripe.Backends{
		API:     gostripe.GetBackendWithConfig(gostripe.APIBackend, backendConfig),
		Connect: gostripe.GetBackendWithConfig(gostripe.ConnectBackend, backendConfig),
		Uploads: gostripe.GetBackendWithConfig(gostripe.UploadsBackend, backendConfig),
	}

	return &gatewayImpl{
		api:  client.New(cfg.Payment.Stripe.SecretKey, backends),
		otel: otel,
	}
}

// TokenizeCard turns a client-side card token into a payment method attached to
// the employer's customer and set as its default.
func (g *gatewayImpl) TokenizeCard(
	ctx context.Context,
	card model.CardDetails,
	address model.BillingAddress,
	customer model.Customer,
) (ref model.PaymentMethodRef, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelStripeScopeName+".TokenizeCard")
	defer scope.End()
	defer scope.TraceIfError(&err)

	customerID, err := g.findOrCreateCustomer(ctx, customer, address)
	if err != nil {
		return ref, &model.PaymentMethodError{Reason: reason(err), Err: err}
	}

	params := &gostripe.PaymentMethodParams{
		Type: gostripe.String(string(gostripe.PaymentMethodTypeCard)),
		Card: &gostripe.PaymentMethodCardParams{Token: gostripe.String(card.Token)},
		BillingDetails: &gostripe.PaymentMethodBillingDetailsParams{
			Name:    gostripe.String(card.HolderName),
			Email:   gostripe.String(customer.Email),
			Address: addressParams(address),
		},
	}
	params.Context = ctx

	method, err := g.api.PaymentMethods.New(params)
	if err != nil {
		log.Error().Err(err).Str("employerID", customer.EmployerID).Msg("failed to create payment method")

		return ref, &model.PaymentMethodError{Reason: reason(err), Err: err}
	}

	attach := &gostripe.PaymentMethodAttachParams{Customer: gostripe.String(customerID)}
	attach.Context = ctx

	if _, err = g.api.PaymentMethods.Attach(method.ID, attach); err != nil {
		log.Error().Err(err).Str("paymentMethodID", method.ID).Msg("failed to attach payment method")

		return ref, &model.PaymentMethodError{Reason: reason(err), Err: err}
	}

	update := &gostripe.CustomerParams{
		InvoiceSettings: &gostripe.CustomerInvoiceSettingsParams{DefaultPaymentMethod: gostripe.String(method.ID)},
	}
	update.Context = ctx

	if _, err = g.api.Customers.Update(customerID, update); err != nil {
		log.Error().Err(err).Str("customerID", customerID).Msg("failed to set default payment method")

		return ref, &model.PaymentMethodError{Reason: reason(err), Err: err}
	}

	return model.PaymentMethodRef{ID: method.ID, CustomerID: customerID}, nil
}

func (g *gatewayImpl) ChargeOnce(
	ctx context.Context,
	spec model.PaymentIntentSpec,
	method model.PaymentMethodRef,
) (res model.PaymentResult, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelStripeScopeName+".ChargeOnce")
	defer scope.End()
	defer scope.TraceIfError(&err)

	intent, err := g.charge(ctx, spec, method, spec.AmountDueNow, spec.IdempotencyKey+keySuffixCharge)
	if err != nil {
		return res, err
	}

	return model.PaymentResult{
		ID:              intent.ID,
		InitialChargeID: latestCharge(intent),
		Status:          string(intent.Status),
		Kind:            model.FlowOneTimeCharge,
		AmountCharged:   gModel.Money(intent.AmountReceived),
	}, nil
}

// CreateSubscription starts monthly billing. With a first billing date the
// subscription trials until then and the prorated first cycle is charged on its
// own; without one the first month is invoiced immediately.
func (g *gatewayImpl) CreateSubscription(
	ctx context.Context,
	spec model.PaymentIntentSpec,
	method model.PaymentMethodRef,
) (res model.PaymentResult, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelStripeScopeName+".CreateSubscription")
	defer scope.End()
	defer scope.TraceIfError(&err)

	price, err := g.createPrice(ctx, spec)
	if err != nil {
		return res, err
	}

	params := &gostripe.SubscriptionParams{
		Customer:             gostripe.String(method.CustomerID),
		DefaultPaymentMethod: gostripe.String(method.ID),
		Items:                []*gostripe.SubscriptionItemsParams{{Price: gostripe.String(price)}},
		Metadata:             spec.Metadata,
	}
	params.Context = ctx
	params.SetIdempotencyKey(spec.IdempotencyKey + keySuffixSubscription)

	prorated := !spec.FirstBillingDate.IsZero()
	if prorated {
		params.TrialEnd = gostripe.Int64(spec.FirstBillingDate.Unix())
		params.ProrationBehavior = gostripe.String(prorationNone)
	} else {
		params.PaymentBehavior = gostripe.String(paymentBehaviorNoPartial)
		params.AddExpand("latest_invoice")
	}

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		log.Error().Err(err).Str("customerID", method.CustomerID).Msg("failed to create subscription")

		return res, executionError(spec, err)
	}

	res = model.PaymentResult{
		ID:     sub.ID,
		Status: string(sub.Status),
		Kind:   model.FlowRecurringSubscription,
	}

	if !prorated {
		res.AmountCharged = spec.AmountDueNow

		if sub.LatestInvoice != nil {
			res.InitialChargeID = sub.LatestInvoice.ID
		}

		return res, nil
	}

	if spec.AmountDueNow == 0 {
		return res, nil
	}

	intent, err := g.charge(ctx, spec, method, spec.AmountDueNow, spec.IdempotencyKey+keySuffixFirstCycle)
	if err != nil {
		g.cancel(ctx, sub.ID)

		return model.PaymentResult{}, err
	}

	res.InitialChargeID = intent.ID
	res.AmountCharged = gModel.Money(intent.AmountReceived)

	return res, nil
}

func (g *gatewayImpl) charge(
	ctx context.Context,
	spec model.PaymentIntentSpec,
	method model.PaymentMethodRef,
	amount gModel.Money,
	idempotencyKey string,
) (*gostripe.PaymentIntent, error) {
	params := &gostripe.PaymentIntentParams{
		Amount:        gostripe.Int64(amount.Cents()),
		Currency:      gostripe.String(spec.Currency),
		Customer:      gostripe.String(method.CustomerID),
		PaymentMethod: gostripe.String(method.ID),
		Confirm:       gostripe.Bool(true),
		AutomaticPaymentMethods: &gostripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        gostripe.Bool(true),
			AllowRedirects: gostripe.String(allowRedirectsNever),
		},
		Metadata: spec.Metadata,
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		log.Error().Err(err).Str("idempotencyKey", idempotencyKey).Msg("failed to confirm payment intent")

		return nil, executionError(spec, err)
	}

	if intent.Status != gostripe.PaymentIntentStatusSucceeded {
		log.Error().Str("paymentIntentID", intent.ID).Str("status", string(intent.Status)).Msg("payment intent not settled")

		return nil, &model.PaymentExecutionError{
			Flow:   spec.Kind,
			Amount: amount,
			Reason: "payment " + string(intent.Status),
		}
	}

	return intent, nil
}

func (g *gatewayImpl) createPrice(ctx context.Context, spec model.PaymentIntentSpec) (string, error) {
	params := &gostripe.PriceParams{
		Currency:   gostripe.String(spec.Currency),
		UnitAmount: gostripe.Int64(spec.RecurringAmount.Cents()),
		Recurring: &gostripe.PriceRecurringParams{
			Interval: gostripe.String(string(gostripe.PriceRecurringIntervalMonth)),
		},
		Metadata: spec.Metadata,
	}
	params.Context = ctx
	params.SetIdempotencyKey(spec.IdempotencyKey + keySuffixPrice)

	if spec.ProviderPackageRef != constant.Empty {
		params.Product = gostripe.String(spec.ProviderPackageRef)
	} else {
		params.ProductData = &gostripe.PriceProductDataParams{
			Name: gostripe.String(fmt.Sprintf("Coworking %s", spec.Metadata[model.MetaPackageID])),
		}
	}

	price, err := g.api.Prices.New(params)
	if err != nil {
		log.Error().Err(err).Str("product", spec.ProviderPackageRef).Msg("failed to create recurring price")

		return constant.Empty, executionError(spec, err)
	}

	return price.ID, nil
}

func (g *gatewayImpl) findOrCreateCustomer(ctx context.Context, customer model.Customer, address model.BillingAddress) (string, error) {
	list := &gostripe.CustomerListParams{Email: gostripe.String(customer.Email)}
	list.Context = ctx
	list.Limit = gostripe.Int64(1)

	iter := g.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}

	if err := iter.Err(); err != nil {
		log.Error().Err(err).Str("employerID", customer.EmployerID).Msg("failed to look up customer")

		return constant.Empty, fmt.Errorf("failed to look up customer: %w", err)
	}

	params := &gostripe.CustomerParams{
		Email:   gostripe.String(customer.Email),
		Name:    gostripe.String(customer.Name),
		Address: addressParams(address),
	}
	params.Context = ctx
	params.AddMetadata(metaEmployerID, customer.EmployerID)

	created, err := g.api.Customers.New(params)
	if err != nil {
		log.Error().Err(err).Str("employerID", customer.EmployerID).Msg("failed to create customer")

		return constant.Empty, fmt.Errorf("failed to create customer: %w", err)
	}

	return created.ID, nil
}

func (g *gatewayImpl) cancel(ctx context.Context, subscriptionID string) {
	params := &gostripe.SubscriptionCancelParams{}
	params.Context = context.WithoutCancel(ctx)

	if _, err := g.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		log.Error().Err(err).Str("subscriptionID", subscriptionID).Msg("failed to cancel subscription after first cycle charge failed")
	}
}

func addressParams(address model.BillingAddress) *gostripe.AddressParams {
	params := &gostripe.AddressParams{
		Line1:      gostripe.String(address.Line1),
		City:       gostripe.String(address.City),
		PostalCode: gostripe.String(address.PostalCode),
		Country:    gostripe.String(address.Country),
	}

	if address.Line2 != constant.Empty {
		params.Line2 = gostripe.String(address.Line2)
	}

	if address.State != constant.Empty {
		params.State = gostripe.String(address.State)
	}

	return params
}

func executionError(spec model.PaymentIntentSpec, err error) error {
	return &model.PaymentExecutionError{
		Flow:   spec.Kind,
		Amount: spec.AmountDueNow,
		Reason: reason(err),
		Err:    err,
	}
}

// reason is the provider's customer-facing message when it sent one.
func reason(err error) string {
	var stripeErr *gostripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != constant.Empty {
		return stripeErr.Msg
	}

	return err.Error()
}

func latestCharge(intent *gostripe.PaymentIntent) string {
	if intent.LatestCharge == nil {
		return constant.Empty
	}

	return intent.LatestCharge.ID
}
