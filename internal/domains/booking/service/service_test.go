package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cowork/config"
	otelMocks "cowork/infras/otel/mocks"
	billingMocks "cowork/internal/domains/billing/mocks"
	billingModel "cowork/internal/domains/billing/model"
	"cowork/internal/domains/booking/mocks"
	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/model/dto"
	"cowork/internal/domains/booking/schedule"
	"cowork/internal/domains/booking/service"
	rcMocks "cowork/internal/domains/ratecard/mocks"
	rcModel "cowork/internal/domains/ratecard/model"
	cacheMocks "cowork/shared/cache/mocks"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/shared/failure"
	gModel "cowork/shared/model"
)

const employerID = "employer-1"

var today = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

var hotDesk = rcModel.Package{
	ID:            "pkg-1",
	SpaceID:       "space-1",
	ProviderRef:   "prod_123",
	PricePerDay:   10000,
	PricePerWeek:  45000,
	PricePerMonth: 160000,
	Active:        true,
}

type fixture struct {
	svc       service.Booking
	repo      *mocks.MockBooking
	billing   *billingMocks.MockProfile
	packages  *rcMocks.MockPackageService
	gateway   *mocks.MockGateway
	publisher *mocks.MockPublisher
	cache     *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.Currency = "usd"
	cfg.Booking.DisableWeekends = true
	cfg.Booking.InFlightLockSeconds = 300

	f := &fixture{
		repo:      mocks.NewMockBooking(ctrl),
		billing:   billingMocks.NewMockProfile(ctrl),
		packages:  rcMocks.NewMockPackageService(ctrl),
		gateway:   mocks.NewMockGateway(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	generator := schedule.NewWithClock(cfg, func() time.Time { return today })

	f.svc = service.New(f.repo, f.billing, f.packages, generator, f.gateway, f.publisher, cfg, f.cache, otelMocks.NewOtel())

	return f
}

// expectAfterCreate registers the background steps of a confirmed booking and
// returns a channel closed once the last of them ran.
func (f *fixture) expectAfterCreate() chan struct{} {
	done := make(chan struct{})

	f.cache.EXPECT().Clear(gomock.Any(), "booking:gets:"+employerID+"*").Return(nil)
	f.billing.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, profile billingModel.Profile) error {
			if profile.EmployerID != employerID {
				return errors.New("unexpected employer")
			}

			return nil
		})
	f.publisher.EXPECT().BookingConfirmed(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ model.Booking) error {
			close(done)

			return nil
		})

	return done
}

func wait(t *testing.T, done chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background steps did not run")
	}
}

func employerCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, employerID)
}

func billing() dto.BillingRequest {
	return dto.BillingRequest{
		CompanyName: "Acme",
		Email:       "billing@acme.test",
		Address: model.BillingAddress{
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
	}
}

func oneTimeRequest() dto.SubmitRequest {
	return dto.SubmitRequest{
		ConfigurationRequest: dto.ConfigurationRequest{
			SpaceID:     "space-1",
			PackageID:   "pkg-1",
			Frequency:   "one_time",
			Type:        "per_day",
			HoursPerDay: 8,
			Dates:       []string{"2024-03-06", "2024-03-04", "2024-03-05"},
		},
		Card:    &dto.CardRequest{Token: "tok_visa", HolderName: "Jane Doe"},
		Billing: billing(),
	}
}

func ongoingRequest() dto.SubmitRequest {
	return dto.SubmitRequest{
		ConfigurationRequest: dto.ConfigurationRequest{
			SpaceID:     "space-1",
			PackageID:   "pkg-1",
			Frequency:   "ongoing",
			Type:        "per_day",
			HoursPerDay: 8,
			StartDate:   "2024-03-20",
			Weekdays:    []int{1, 3},
		},
		Card:    &dto.CardRequest{Token: "tok_visa", HolderName: "Jane Doe"},
		Billing: billing(),
	}
}

func TestBookingService_Submit_OneTime(t *testing.T) {
	f := newFixture(t)
	done := f.expectAfterCreate()

	var lockOwner string
	var charged model.PaymentIntentSpec
	var created model.Booking

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
	f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)

	gomock.InOrder(
		f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), 300).
			DoAndReturn(func(_ context.Context, _, owner string, _ int) (bool, error) {
				lockOwner = owner

				return true, nil
			}),
		f.gateway.EXPECT().TokenizeCard(gomock.Any(), model.CardDetails{Token: "tok_visa", HolderName: "Jane Doe"}, gomock.Any(), gomock.Any()).
			Return(model.PaymentMethodRef{ID: "pm_1", CustomerID: "cus_1"}, nil),
		f.gateway.EXPECT().ChargeOnce(gomock.Any(), gomock.Any(), model.PaymentMethodRef{ID: "pm_1", CustomerID: "cus_1"}).
			DoAndReturn(func(_ context.Context, spec model.PaymentIntentSpec, _ model.PaymentMethodRef) (model.PaymentResult, error) {
				charged = spec

				return model.PaymentResult{
					ID:            "pi_123",
					Status:        model.PaymentStatusSucceeded,
					Kind:          model.FlowOneTimeCharge,
					AmountCharged: spec.AmountDueNow,
				}, nil
			}),
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking) error {
				created = booking

				return nil
			}),
		f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	res, err := f.svc.Submit(employerCtx(), oneTimeRequest())
	require.NoError(t, err)

	wait(t, done)

	assert.Equal(t, model.FlowOneTimeCharge, charged.Kind)
	assert.Equal(t, gModel.Money(30000), charged.AmountDueNow)
	assert.Equal(t, "usd", charged.Currency)
	assert.Equal(t, "billing@acme.test", charged.Customer.Email)
	assert.Equal(t, "2024-03-04,2024-03-05,2024-03-06", charged.Metadata[model.MetaDates])
	assert.NotEmpty(t, charged.IdempotencyKey)
	assert.Equal(t, charged.IdempotencyKey, lockOwner)
	assert.Equal(t, charged.IdempotencyKey, created.IdempotencyKey)

	assert.Equal(t, "pi_123", created.PaymentID)
	assert.Equal(t, model.StatusConfirmed, created.Status)
	assert.True(t, created.EndDate.Valid)

	assert.Equal(t, created.ID, res.ID)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05", "2024-03-06"}, res.Dates)
	assert.Equal(t, int64(30000), res.TotalCents)
	assert.Equal(t, 3, res.Duration)
	assert.Equal(t, "pi_123", res.Payment.ID)
	assert.Equal(t, "2024-03-06", res.EndDate)
}

func TestBookingService_Submit_OngoingPerDay(t *testing.T) {
	f := newFixture(t)
	done := f.expectAfterCreate()

	var created model.Booking

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
	f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
	f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.PaymentMethodRef{ID: "pm_1", CustomerID: "cus_1"}, nil)
	f.gateway.EXPECT().CreateSubscription(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec model.PaymentIntentSpec, _ model.PaymentMethodRef) (model.PaymentResult, error) {
			assert.Equal(t, model.FlowRecurringSubscription, spec.Kind)
			assert.Equal(t, gModel.Money(30000), spec.AmountDueNow)
			assert.Equal(t, gModel.Money(90000), spec.RecurringAmount)
			assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), spec.FirstBillingDate)
			assert.Equal(t, "prod_123", spec.ProviderPackageRef)

			return model.PaymentResult{
				ID:              "sub_1",
				InitialChargeID: "pi_1",
				Status:          model.PaymentStatusTrialing,
				Kind:            model.FlowRecurringSubscription,
			}, nil
		})
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, booking model.Booking) error {
			created = booking

			return nil
		})

	res, err := f.svc.Submit(employerCtx(), ongoingRequest())
	require.NoError(t, err)

	wait(t, done)

	assert.False(t, created.EndDate.Valid)
	assert.Equal(t, gModel.Money(30000), created.FirstCycleAmount)
	assert.Equal(t, gModel.Money(90000), created.NextCycleAmount)
	assert.Equal(t, []int64{1, 3}, res.Weekdays)
	assert.Equal(t, "2024-04-01", res.NextBillingDate)
	assert.Equal(t, "sub_1", res.Payment.ID)
	assert.Equal(t, "pi_1", res.Payment.InitialChargeID)
	assert.Empty(t, res.EndDate)
}

func TestBookingService_Submit_BlockBookings(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		setupMock func(f *fixture, charged *model.PaymentIntentSpec)
		wantFlow  model.PaymentFlow
		wantDue   gModel.Money
		wantEnd   string
	}{
		{
			name:      "one-time weekly is charged once",
			frequency: "one_time",
			setupMock: func(f *fixture, charged *model.PaymentIntentSpec) {
				f.gateway.EXPECT().ChargeOnce(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, spec model.PaymentIntentSpec, _ model.PaymentMethodRef) (model.PaymentResult, error) {
						*charged = spec

						return model.PaymentResult{ID: "pi_1", Status: model.PaymentStatusSucceeded, AmountCharged: spec.AmountDueNow}, nil
					})
			},
			wantFlow: model.FlowOneTimeCharge,
			wantDue:  45000,
			wantEnd:  "2024-03-08",
		},
		{
			name:      "ongoing monthly subscribes without proration",
			frequency: "ongoing",
			setupMock: func(f *fixture, charged *model.PaymentIntentSpec) {
				f.gateway.EXPECT().CreateSubscription(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, spec model.PaymentIntentSpec, _ model.PaymentMethodRef) (model.PaymentResult, error) {
						*charged = spec

						return model.PaymentResult{ID: "sub_1", Status: model.PaymentStatusSucceeded, AmountCharged: spec.AmountDueNow}, nil
					})
			},
			wantFlow: model.FlowRecurringSubscription,
			wantDue:  160000,
			wantEnd:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			done := f.expectAfterCreate()

			kind := "weekly"
			if tt.frequency == "ongoing" {
				kind = "monthly"
			}

			req := oneTimeRequest()
			req.Frequency = tt.frequency
			req.Type = kind
			req.HoursPerDay = 0
			req.Dates = nil
			req.StartDate = "2024-03-04"

			var charged model.PaymentIntentSpec

			f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
			f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
			f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(model.PaymentMethodRef{ID: "pm_1", CustomerID: "cus_1"}, nil)
			tt.setupMock(f, &charged)
			f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

			res, err := f.svc.Submit(employerCtx(), req)
			require.NoError(t, err)

			wait(t, done)

			assert.Equal(t, tt.wantFlow, charged.Kind)
			assert.Equal(t, tt.wantDue, charged.AmountDueNow)
			assert.True(t, charged.FirstBillingDate.IsZero())
			assert.Equal(t, int64(tt.wantDue), res.TotalCents)
			assert.Equal(t, "2024-03-04", res.StartDate)
			assert.Equal(t, tt.wantEnd, res.EndDate)

			if tt.wantFlow == model.FlowRecurringSubscription {
				assert.Equal(t, tt.wantDue, charged.RecurringAmount)
			} else {
				assert.Zero(t, charged.RecurringAmount)
			}
		})
	}
}

func TestBookingService_Submit_FreeBookingSkipsPayment(t *testing.T) {
	f := newFixture(t)
	done := f.expectAfterCreate()

	free := hotDesk
	free.PricePerDay = 0

	req := oneTimeRequest()
	req.Card = nil

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(free, nil)
	f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
	f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.Submit(employerCtx(), req)
	require.NoError(t, err)

	wait(t, done)

	assert.Equal(t, string(model.FlowNone), res.Payment.Flow)
	assert.Equal(t, model.PaymentStatusNotRequired, res.Payment.Status)
	assert.Zero(t, res.TotalCents)
}

func TestBookingService_Submit_RejectedBeforePayment(t *testing.T) {
	pastDate := oneTimeRequest()
	pastDate.Dates = []string{"2024-02-28"}

	weekend := oneTimeRequest()
	weekend.Dates = []string{"2024-03-09"}

	ongoingWeekly := ongoingRequest()
	ongoingWeekly.Type = "weekly"

	noCard := oneTimeRequest()
	noCard.Card = nil

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.SubmitRequest
		setupMock func(f *fixture)
		wantCode  int
		wantErr   func(t *testing.T, err error)
	}{
		{
			name:     "missing employer",
			ctx:      context.Background(),
			req:      oneTimeRequest(),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "date in the past",
			ctx:      employerCtx(),
			req:      pastDate,
			wantCode: http.StatusBadRequest,
			wantErr: func(t *testing.T, err error) {
				var target *model.InvalidStartDateError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:     "weekend date",
			ctx:      employerCtx(),
			req:      weekend,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ongoing weekly",
			ctx:      employerCtx(),
			req:      ongoingWeekly,
			wantCode: http.StatusBadRequest,
			wantErr: func(t *testing.T, err error) {
				var target *model.ValidationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "type", target.Field)
			},
		},
		{
			name: "card missing when payment is due",
			ctx:  employerCtx(),
			req:  noCard,
			setupMock: func(f *fixture) {
				f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
			},
			wantCode: http.StatusBadRequest,
			wantErr: func(t *testing.T, err error) {
				var target *model.ValidationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "card", target.Field)
			},
		},
		{
			name: "package not found",
			ctx:  employerCtx(),
			req:  oneTimeRequest(),
			setupMock: func(f *fixture) {
				f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(rcModel.Package{}, failure.NotFound("package not found"))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "overlapping booking",
			ctx:  employerCtx(),
			req:  oneTimeRequest(),
			setupMock: func(f *fixture) {
				f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
				f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
			wantErr: func(t *testing.T, err error) {
				var target *model.BookingConflictError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "attempt already in progress",
			ctx:  employerCtx(),
			req:  oneTimeRequest(),
			setupMock: func(f *fixture) {
				f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
				f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusConflict,
			wantErr: func(t *testing.T, err error) {
				var target *model.AttemptInProgressError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "lock store unavailable",
			ctx:  employerCtx(),
			req:  oneTimeRequest(),
			setupMock: func(f *fixture) {
				f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
				f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.setupMock != nil {
				tt.setupMock(f)
			}

			_, err := f.svc.Submit(tt.ctx, tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))

			if tt.wantErr != nil {
				tt.wantErr(t, err)
			}
		})
	}
}

func TestBookingService_Submit_PaymentFailures(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantErr   func(t *testing.T, err error)
	}{
		{
			name: "card rejected",
			setupMock: func(f *fixture) {
				f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.PaymentMethodRef{}, errors.New("card declined"))
			},
			wantErr: func(t *testing.T, err error) {
				var target *model.PaymentMethodError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "card declined", target.Reason)
			},
		},
		{
			name: "charge failed",
			setupMock: func(f *fixture) {
				f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.PaymentMethodRef{ID: "pm_1"}, nil)
				f.gateway.EXPECT().ChargeOnce(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.PaymentResult{}, errors.New("insufficient funds"))
			},
			wantErr: func(t *testing.T, err error) {
				var target *model.PaymentExecutionError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, model.FlowOneTimeCharge, target.Flow)
				assert.Equal(t, gModel.Money(30000), target.Amount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
			f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
			f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			tt.setupMock(f)

			_, err := f.svc.Submit(employerCtx(), oneTimeRequest())

			require.Error(t, err)
			assert.Equal(t, http.StatusPaymentRequired, failure.GetCode(err))
			assert.False(t, model.IsPostPaymentFailure(err))
			tt.wantErr(t, err)
		})
	}
}

func TestBookingService_Submit_RecordFailsAfterCharge(t *testing.T) {
	f := newFixture(t)

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)
	f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil)
	f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.PaymentMethodRef{ID: "pm_1"}, nil)
	f.gateway.EXPECT().ChargeOnce(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.PaymentResult{ID: "pi_123", Status: model.PaymentStatusSucceeded, Kind: model.FlowOneTimeCharge}, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")).Times(1)
	f.publisher.EXPECT().ReconciliationRequired(gomock.Any(), employerID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, metadata map[string]string, fail *model.PostPaymentBookingFailure) error {
			assert.Equal(t, "pkg-1", metadata[model.MetaPackageID])
			assert.Equal(t, "pi_123", fail.Payment.ID)

			return errors.New("broker down")
		})

	_, err := f.svc.Submit(employerCtx(), oneTimeRequest())

	var target *model.PostPaymentBookingFailure
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "pi_123", target.Payment.ID)
	assert.Equal(t, gModel.Money(30000), target.Amount)
	assert.NotEmpty(t, target.IdempotencyKey)
	assert.Equal(t, http.StatusBadGateway, failure.GetCode(err))
	assert.Equal(t, "pi_123", failure.GetDetails(err)["payment_id"])
}

func TestBookingService_Submit_RetryAfterRecordFailureChargesAgain(t *testing.T) {
	f := newFixture(t)
	done := f.expectAfterCreate()

	var lockKeys []string
	var keys []string

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil).Times(2)
	f.repo.EXPECT().Overlaps(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key, _ string, _ int) (bool, error) {
			lockKeys = append(lockKeys, key)

			return true, nil
		}).Times(2)
	f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.gateway.EXPECT().TokenizeCard(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.PaymentMethodRef{ID: "pm_1", CustomerID: "cus_1"}, nil).Times(2)
	f.gateway.EXPECT().ChargeOnce(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec model.PaymentIntentSpec, _ model.PaymentMethodRef) (model.PaymentResult, error) {
			keys = append(keys, spec.IdempotencyKey)

			return model.PaymentResult{
				ID:            "pi_" + spec.IdempotencyKey,
				Status:        model.PaymentStatusSucceeded,
				AmountCharged: spec.AmountDueNow,
			}, nil
		}).Times(2)
	f.publisher.EXPECT().ReconciliationRequired(gomock.Any(), employerID, gomock.Any(), gomock.Any()).Return(nil)

	gomock.InOrder(
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")),
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := f.svc.Submit(employerCtx(), oneTimeRequest())

	var target *model.PostPaymentBookingFailure
	require.ErrorAs(t, err, &target)

	res, err := f.svc.Submit(employerCtx(), oneTimeRequest())
	require.NoError(t, err)

	wait(t, done)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
	assert.Equal(t, keys[0], target.IdempotencyKey)
	assert.Equal(t, "pi_"+keys[1], res.Payment.ID)
	assert.Equal(t, lockKeys[0], lockKeys[1])
}

func TestBookingService_Quote(t *testing.T) {
	f := newFixture(t)

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)

	res, err := f.svc.Quote(employerCtx(), ongoingRequest().ConfigurationRequest)
	require.NoError(t, err)

	assert.Equal(t, string(model.FlowRecurringSubscription), res.PaymentFlow)
	assert.Equal(t, int64(30000), res.TotalCents)
	assert.Equal(t, int64(30000), res.DueNowCents)
	assert.Equal(t, int64(90000), res.RecurringCents)
	require.NotNil(t, res.Prorated)
	assert.Equal(t, 3, res.Prorated.RemainingDaysInFirstCycle)
	assert.Equal(t, 9, res.Prorated.NextCycleDays)
	assert.Equal(t, "2024-04-01", res.Prorated.NextBillingDate)
	assert.Equal(t, dto.ScheduleWeekdaySet, res.Schedule.Kind)
	assert.Equal(t, "2024-03-20", res.Schedule.Preview[0])
	assert.Len(t, res.Schedule.Preview, res.Schedule.Duration)
}

func TestBookingService_Quote_Monthly(t *testing.T) {
	f := newFixture(t)

	f.packages.EXPECT().Resolve(gomock.Any(), "space-1", "pkg-1").Return(hotDesk, nil)

	res, err := f.svc.Quote(employerCtx(), dto.ConfigurationRequest{
		SpaceID:   "space-1",
		PackageID: "pkg-1",
		Frequency: "one_time",
		Type:      "monthly",
		StartDate: "2024-03-04",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.FlowOneTimeCharge), res.PaymentFlow)
	assert.Equal(t, int64(160000), res.TotalCents)
	assert.Nil(t, res.Prorated)
	assert.Equal(t, "2024-04-02", res.Schedule.EndDate)
	assert.Len(t, res.Schedule.OperatingDays, res.Schedule.Duration)
}

func TestBookingService_Schedule(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.ScheduleRequest
		want     func(t *testing.T, res dto.ScheduleResponse)
		wantCode int
	}{
		{
			name: "explicit dates are sorted and deduplicated",
			req:  dto.ScheduleRequest{Kind: dto.ScheduleExplicitDates, Dates: []string{"2024-03-05", "2024-03-04", "2024-03-05"}},
			want: func(t *testing.T, res dto.ScheduleResponse) {
				assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, res.Dates)
				assert.Equal(t, 2, res.Duration)
			},
		},
		{
			name: "week start on a saturday rolls to monday",
			req:  dto.ScheduleRequest{Kind: dto.ScheduleWeekStart, StartDate: "2024-03-02"},
			want: func(t *testing.T, res dto.ScheduleResponse) {
				assert.Equal(t, "2024-03-04", res.StartDate)
				assert.Equal(t, "2024-03-08", res.EndDate)
				assert.Equal(t, 5, res.Duration)
			},
		},
		{
			name: "weekday set previews matching days",
			req:  dto.ScheduleRequest{Kind: dto.ScheduleWeekdaySet, StartDate: "2024-03-04", Weekdays: []int{1}},
			want: func(t *testing.T, res dto.ScheduleResponse) {
				assert.Equal(t, []string{"2024-03-04", "2024-03-11", "2024-03-18", "2024-03-25", "2024-04-01"}, res.Preview)
				assert.Equal(t, 5, res.Duration)
				assert.Equal(t, []int64{1}, res.Weekdays)
			},
		},
		{
			name:     "missing start date",
			req:      dto.ScheduleRequest{Kind: dto.ScheduleMonthStart},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "month start on a weekend",
			req:      dto.ScheduleRequest{Kind: dto.ScheduleMonthStart, StartDate: "2024-03-02"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.svc.Schedule(employerCtx(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.Kind, res.Kind)
			tt.want(t, res)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).
		Return([]model.Booking{{ID: "booking-1", EmployerID: employerID}}, nil)
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 3600).Return(nil).AnyTimes()

	res, err := f.svc.GetAll(employerCtx(), params)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "booking-1", res.Bookings[0].ID)
}

func TestBookingService_Get(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "cache hit",
			ctx:  employerCtx(),
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "booking:get:"+employerID+":booking-1", gomock.Any()).Return(nil)
			},
		},
		{
			name: "cache miss",
			ctx:  employerCtx(),
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "booking-1", EmployerID: employerID}, nil)
				f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
		},
		{
			name: "not found",
			ctx:  employerCtx(),
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			ctx:  employerCtx(),
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "missing employer",
			ctx:      context.Background(),
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.setupMock != nil {
				tt.setupMock(f)
			}

			_, err := f.svc.Get(tt.ctx, "booking-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}
