package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"cowork/config"
	"cowork/infras/otel"
	billingRepo "cowork/internal/domains/billing/repository"
	"cowork/internal/domains/booking/event"
	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/model/dto"
	"cowork/internal/domains/booking/payment"
	"cowork/internal/domains/booking/pricing"
	"cowork/internal/domains/booking/repository"
	"cowork/internal/domains/booking/schedule"
	rcService "cowork/internal/domains/ratecard/service"
	"cowork/shared"
	"cowork/shared/cache"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/shared/failure"
	"cowork/shared/logger"
	"cowork/shared/timezone"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	lockBooking        = "booking:lock"
)

// Booking drives the wizard: it generates schedules, quotes configurations and
// turns a submitted configuration into a payment and a recorded booking.
type Booking interface {
	Schedule(ctx context.Context, req dto.ScheduleRequest) (dto.ScheduleResponse, error)
	Quote(ctx context.Context, req dto.ConfigurationRequest) (dto.QuoteResponse, error)
	Submit(ctx context.Context, req dto.SubmitRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo        repository.Booking
	billingRepo billingRepo.Profile
	packages    rcService.Package
	generator   schedule.Generator
	gateway     payment.Gateway
	publisher   event.Publisher
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	now         func() time.Time
	newID       func() string
}

func New(
	repo repository.Booking,
	billingRepo billingRepo.Profile,
	packages rcService.Package,
	generator schedule.Generator,
	gateway payment.Gateway,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:        repo,
		billingRepo: billingRepo,
		packages:    packages,
		generator:   generator,
		gateway:     gateway,
		publisher:   publisher,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		now:         timezone.Now,
		newID:       uuid.NewString,
	}
}

func (s *serviceImpl) Schedule(ctx context.Context, req dto.ScheduleRequest) (res dto.ScheduleResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Schedule")
	defer scope.End()
	defer scope.TraceIfError(&err)

	sched, err := s.generate(req)
	if err != nil {
		return res, err
	}

	var preview []time.Time
	if req.Kind == dto.ScheduleWeekdaySet {
		preview = slices.Collect(s.generator.PreviewNext30Days(sched.Weekdays, sched.StartDate))
	}

	res.FromModel(req.Kind, sched, preview)

	return res, nil
}

func (s *serviceImpl) Quote(ctx context.Context, req dto.ConfigurationRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Quote")
	defer scope.End()
	defer scope.TraceIfError(&err)

	employerID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	cfg, sched, err := s.configure(req)
	if err != nil {
		return res, err
	}

	priced, spec, err := s.price(ctx, cfg, model.Customer{EmployerID: employerID}, constant.Empty)
	if err != nil {
		return res, err
	}

	var preview []time.Time
	if cfg.IsOngoing() && cfg.Type == model.TypePerDay {
		preview = slices.Collect(s.generator.PreviewNext30Days(cfg.SelectedWeekdays, cfg.StartDate))
	}

	var schedRes dto.ScheduleResponse
	schedRes.FromModel(sched.kind, sched.schedule, preview)

	res.FromModel(cfg, schedRes, priced, spec)

	return res, nil
}

// Submit tokenizes the card, executes the selected payment flow exactly once and
// records the booking. A failure after the provider accepted the payment is
// reported as a reconciliation case and never retried.
func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer scope.TraceIfError(&err)

	employerID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if employerID == constant.Empty {
		return res, failure.Unauthorized("missing employer identity") // nolint:wrapcheck
	}

	cfg, _, err := s.configure(req.ConfigurationRequest)
	if err != nil {
		return res, err
	}

	customer := req.Billing.Customer(employerID)
	idempotencyKey := s.newID()

	priced, spec, err := s.price(ctx, cfg, customer, idempotencyKey)
	if err != nil {
		return res, err
	}

	if spec.Kind != model.FlowNone && req.Card == nil {
		return res, &model.ValidationError{Field: "card", Reason: "is required when a payment is due"}
	}

	now := s.now()
	draft := model.NewBooking(s.newID(), employerID, cfg, priced, spec, model.PaymentResult{}, now)

	overlaps, err := s.repo.Overlaps(ctx, draft)
	if err != nil {
		log.Error().Err(err).Msg("failed to check overlapping bookings")

		return res, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	if overlaps {
		return res, &model.BookingConflictError{
			EmployeeID: cfg.EmployeeID,
			StartDate:  cfg.StartDate,
			EndDate:    cfg.EndDate,
		}
	}

	fingerprint := cfg.Fingerprint(employerID)
	lockKey := shared.BuildCacheKey(lockBooking, fingerprint)

	acquired, err := s.cache.Lock(ctx, lockKey, idempotencyKey, s.cfg.Booking.InFlightLockSeconds)
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire booking lock")

		return res, fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	if !acquired {
		return res, &model.AttemptInProgressError{Fingerprint: fingerprint}
	}

	defer func() {
		if err := s.cache.Unlock(context.WithoutCancel(ctx), lockKey, idempotencyKey); err != nil {
			log.Error().Err(err).Str("lockKey", lockKey).Msg("failed to release booking lock")
		}
	}()

	// the provider call and everything after it must finish even if the client goes away
	c := context.WithoutCancel(ctx)

	result, err := s.pay(c, req, spec, customer)
	if err != nil {
		return res, err
	}

	booking := model.NewBooking(draft.ID, employerID, cfg, priced, spec, result, now)

	if err = s.repo.Create(c, booking); err != nil {
		if spec.Kind == model.FlowNone {
			log.Error().Err(err).Msg("failed to create booking")

			return res, err // nolint:wrapcheck
		}

		return res, s.reconcile(c, employerID, spec, result, err)
	}

	s.afterCreate(c, req.Billing, booking, now)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	employerID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if employerID == constant.Empty {
		return res, failure.Unauthorized("missing employer identity") // nolint:wrapcheck
	}

	filter := filterByEmployer(employerID)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllBooking, employerID), req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	employerID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if employerID == constant.Empty {
		return res, failure.Unauthorized("missing employer identity") // nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, employerID, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			shared.FilterByID(id, model.FieldID, model.TableName),
			filterByEmployer(employerID),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

type generated struct {
	kind     string
	schedule model.Schedule
}

// configure builds the configuration through its transitions and generates the
// schedule the frequency and type call for.
func (s *serviceImpl) configure(req dto.ConfigurationRequest) (model.Configuration, generated, error) {
	cfg := req.Base()

	schedReq, ok := req.ScheduleRequest()
	if !ok {
		return cfg, generated{}, cfg.Validate() // nolint:wrapcheck
	}

	sched, err := s.generate(schedReq)
	if err != nil {
		return cfg, generated{}, err
	}

	cfg = cfg.WithSchedule(sched)

	if err := cfg.Validate(); err != nil {
		return cfg, generated{}, err // nolint:wrapcheck
	}

	return cfg, generated{kind: schedReq.Kind, schedule: sched}, nil
}

func (s *serviceImpl) generate(req dto.ScheduleRequest) (model.Schedule, error) {
	if req.Kind != dto.ScheduleExplicitDates && req.StartDate == constant.Empty {
		return model.Schedule{}, &model.ValidationError{Field: "start_date", Reason: "is required"}
	}

	switch req.Kind {
	case dto.ScheduleExplicitDates:
		return s.generator.FromExplicitDates(req.ParsedDates()) // nolint:wrapcheck
	case dto.ScheduleWeekStart:
		return s.generator.FromWeekStart(req.ParsedStartDate()) // nolint:wrapcheck
	case dto.ScheduleMonthStart:
		return s.generator.FromMonthStart(req.ParsedStartDate()) // nolint:wrapcheck
	case dto.ScheduleWeekdaySet:
		weekdays, err := model.WeekdaySetFromInts(req.Weekdays)
		if err != nil {
			return model.Schedule{}, &model.ValidationError{Field: "selected_weekdays", Reason: err.Error()}
		}

		return s.generator.FromWeekdaySet(weekdays, req.ParsedStartDate()) // nolint:wrapcheck
	}

	return model.Schedule{}, &model.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown schedule kind %q", req.Kind)}
}

func (s *serviceImpl) price(
	ctx context.Context,
	cfg model.Configuration,
	customer model.Customer,
	idempotencyKey string,
) (model.Pricing, model.PaymentIntentSpec, error) {
	pkg, err := s.packages.Resolve(ctx, cfg.SpaceID, cfg.PackageID)
	if err != nil {
		return model.Pricing{}, model.PaymentIntentSpec{}, err // nolint:wrapcheck
	}

	rates := pkg.RateCard()

	priced, err := pricing.Price(cfg, &rates)
	if err != nil {
		log.Error().Err(err).Str("packageID", cfg.PackageID).Msg("failed to price booking")

		return model.Pricing{}, model.PaymentIntentSpec{}, err // nolint:wrapcheck
	}

	spec, err := payment.Select(payment.Request{
		Config:         cfg,
		Pricing:        priced,
		Package:        pkg,
		Customer:       customer,
		Currency:       s.cfg.Booking.Currency,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to select payment flow")

		return model.Pricing{}, model.PaymentIntentSpec{}, err // nolint:wrapcheck
	}

	return priced, spec, nil
}

func (s *serviceImpl) pay(
	ctx context.Context,
	req dto.SubmitRequest,
	spec model.PaymentIntentSpec,
	customer model.Customer,
) (model.PaymentResult, error) {
	if spec.Kind == model.FlowNone {
		return model.PaymentResult{Kind: model.FlowNone, Status: model.PaymentStatusNotRequired}, nil
	}

	method, err := s.gateway.TokenizeCard(ctx, req.CardDetails(), req.Billing.Address, customer)
	if err != nil {
		log.Error().Err(err).Msg("failed to tokenize card")

		var methodErr *model.PaymentMethodError
		if errors.As(err, &methodErr) {
			return model.PaymentResult{}, err // nolint:wrapcheck
		}

		return model.PaymentResult{}, &model.PaymentMethodError{Reason: err.Error(), Err: err}
	}

	var result model.PaymentResult

	switch spec.Kind {
	case model.FlowRecurringSubscription:
		result, err = s.gateway.CreateSubscription(ctx, spec, method)
	default:
		result, err = s.gateway.ChargeOnce(ctx, spec, method)
	}

	if err != nil {
		log.Error().Err(err).Str("flow", string(spec.Kind)).Msg("failed to execute payment")

		var execErr *model.PaymentExecutionError
		if errors.As(err, &execErr) {
			return model.PaymentResult{}, err // nolint:wrapcheck
		}

		return model.PaymentResult{}, &model.PaymentExecutionError{
			Flow:   spec.Kind,
			Amount: spec.AmountDueNow,
			Reason: err.Error(),
			Err:    err,
		}
	}

	if result.Kind == constant.Empty {
		result.Kind = spec.Kind
	}

	return result, nil
}

func (s *serviceImpl) reconcile(
	ctx context.Context,
	employerID string,
	spec model.PaymentIntentSpec,
	result model.PaymentResult,
	cause error,
) error {
	fail := &model.PostPaymentBookingFailure{
		Payment:        result,
		Amount:         spec.AmountDueNow,
		IdempotencyKey: spec.IdempotencyKey,
		Err:            cause,
	}

	logger.Reconciliation(ctx).
		Err(cause).
		Str("employerID", employerID).
		Str("paymentID", result.ID).
		Str("paymentKind", string(result.Kind)).
		Int64("amountCents", spec.AmountDueNow.Cents()).
		Str("idempotencyKey", spec.IdempotencyKey).
		Msg("payment succeeded but booking was not recorded")

	if err := s.publisher.ReconciliationRequired(ctx, employerID, spec.Metadata, fail); err != nil {
		log.Error().Err(err).Str("paymentID", result.ID).Msg("failed to publish reconciliation event")
	}

	return fail
}

// afterCreate runs the steps a confirmed booking does not depend on.
func (s *serviceImpl) afterCreate(ctx context.Context, billing dto.BillingRequest, booking model.Booking, now time.Time) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheGetAllBooking, booking.EmployerID))

		if err := s.billingRepo.Upsert(c, billing.ToModel(s.newID(), booking.EmployerID, now)); err != nil {
			log.Error().Err(err).Str("employerID", booking.EmployerID).Msg("failed to save billing profile")
		}

		if err := s.publisher.BookingConfirmed(c, booking); err != nil {
			log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to publish booking confirmed event")
		}
	}()
}

func filterByEmployer(employerID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmployerID,
				Value:    employerID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}
