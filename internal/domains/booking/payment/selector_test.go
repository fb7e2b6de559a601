package payment_test

import (
	"errors"
	"testing"
	"time"

	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/payment"
	"cowork/internal/domains/booking/pricing"
	rcModel "cowork/internal/domains/ratecard/model"
	gModel "cowork/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var pkg = rcModel.Package{
	ID:            "pkg-1",
	SpaceID:       "space-1",
	ProviderRef:   "prod_123",
	PricePerDay:   10000,
	PricePerWeek:  45000,
	PricePerMonth: 160000,
}

func base(frequency model.BookingFrequency, kind model.BookingType) model.Configuration {
	return model.NewConfiguration().
		WithPackage(pkg.SpaceID, pkg.ID).
		WithFrequency(frequency).
		WithType(kind)
}

func request(t *testing.T, cfg model.Configuration, p rcModel.Package) payment.Request {
	t.Helper()

	rates := p.RateCard()
	priced, err := pricing.Price(cfg, &rates)
	require.NoError(t, err)

	return payment.Request{
		Config:         cfg,
		Pricing:        priced,
		Package:        p,
		Customer:       model.Customer{EmployerID: "employer-1", Email: "billing@acme.test", Name: "Acme"},
		Currency:       "usd",
		IdempotencyKey: "key-1",
	}
}

func TestSelect(t *testing.T) {
	explicit := base(model.FrequencyOneTime, model.TypePerDay).WithSchedule(model.Schedule{
		Dates:     []time.Time{date(2024, 3, 4), date(2024, 3, 5), date(2024, 3, 6)},
		StartDate: date(2024, 3, 4),
		EndDate:   date(2024, 3, 6),
		Duration:  3,
	})
	weekly := base(model.FrequencyOneTime, model.TypeWeekly).WithSchedule(model.Schedule{
		StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 8), Duration: 5,
	})
	monthly := base(model.FrequencyOneTime, model.TypeMonthly).WithSchedule(model.Schedule{
		StartDate: date(2024, 3, 4), EndDate: date(2024, 4, 2), Duration: 22,
	})
	ongoingMonthly := base(model.FrequencyOngoing, model.TypeMonthly).WithSchedule(model.Schedule{
		StartDate: date(2024, 3, 4), EndDate: date(2024, 4, 2), Duration: 22,
	})
	ongoingPerDay := base(model.FrequencyOngoing, model.TypePerDay).WithSchedule(model.Schedule{
		Weekdays: model.NewWeekdaySet(time.Monday, time.Wednesday), StartDate: date(2024, 3, 20), Duration: 9,
	})

	tests := []struct {
		name          string
		cfg           model.Configuration
		wantKind      model.PaymentFlow
		wantDueNow    gModel.Money
		wantRecurring gModel.Money
		wantFirstBill time.Time
	}{
		{name: "one-time per-day", cfg: explicit, wantKind: model.FlowOneTimeCharge, wantDueNow: 30000},
		{name: "one-time weekly", cfg: weekly, wantKind: model.FlowOneTimeCharge, wantDueNow: 45000},
		{name: "one-time monthly", cfg: monthly, wantKind: model.FlowOneTimeCharge, wantDueNow: 160000},
		{
			name:          "ongoing monthly",
			cfg:           ongoingMonthly,
			wantKind:      model.FlowRecurringSubscription,
			wantDueNow:    160000,
			wantRecurring: 160000,
		},
		{
			name:          "ongoing per-day",
			cfg:           ongoingPerDay,
			wantKind:      model.FlowRecurringSubscription,
			wantDueNow:    30000,
			wantRecurring: 90000,
			wantFirstBill: date(2024, 4, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := payment.Select(request(t, tt.cfg, pkg))
			require.NoError(t, err)

			assert.Equal(t, tt.wantKind, spec.Kind)
			assert.Equal(t, tt.wantDueNow, spec.AmountDueNow)
			assert.Equal(t, tt.wantRecurring, spec.RecurringAmount)
			assert.Equal(t, tt.wantFirstBill, spec.FirstBillingDate)
			assert.Equal(t, "usd", spec.Currency)
			assert.Equal(t, "prod_123", spec.ProviderPackageRef)
			assert.Equal(t, "key-1", spec.IdempotencyKey)
			assert.Equal(t, "pkg-1", spec.Metadata[model.MetaPackageID])
			assert.Equal(t, "space-1", spec.Metadata[model.MetaSpaceID])
			assert.Equal(t, "employer-1", spec.Metadata[model.MetaEmployerID])
		})
	}
}

func TestSelect_FreePackageNeedsNoPayment(t *testing.T) {
	free := pkg
	free.PricePerDay = 0

	cfg := base(model.FrequencyOneTime, model.TypePerDay).WithSchedule(model.Schedule{
		Dates: []time.Time{date(2024, 3, 4)}, StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 4), Duration: 1,
	})

	spec, err := payment.Select(request(t, cfg, free))

	require.NoError(t, err)
	assert.Equal(t, model.FlowNone, spec.Kind)
}

func TestSelect_RecurringWithNothingDueNowStillSubscribes(t *testing.T) {
	// Mondays only, starting after the last Monday of March
	cfg := base(model.FrequencyOngoing, model.TypePerDay).WithSchedule(model.Schedule{
		Weekdays: model.NewWeekdaySet(time.Monday), StartDate: date(2024, 3, 26), Duration: 4,
	})

	spec, err := payment.Select(request(t, cfg, pkg))

	require.NoError(t, err)
	assert.Equal(t, model.FlowRecurringSubscription, spec.Kind)
	assert.Zero(t, spec.AmountDueNow)
	assert.Equal(t, gModel.Money(50000), spec.RecurringAmount)
}

func TestSelect_Unsupported(t *testing.T) {
	cfg := base(model.FrequencyOngoing, model.TypeWeekly).WithSchedule(model.Schedule{
		StartDate: date(2024, 3, 4), Duration: 5,
	})

	_, err := payment.Select(payment.Request{Config: cfg, Package: pkg})

	var unsupported *model.UnsupportedCombinationError
	assert.True(t, errors.As(err, &unsupported))
}

func TestSelect_OngoingPerDayWithoutProration(t *testing.T) {
	cfg := base(model.FrequencyOngoing, model.TypePerDay).WithSchedule(model.Schedule{
		Weekdays: model.NewWeekdaySet(time.Monday), StartDate: date(2024, 3, 20), Duration: 4,
	})

	_, err := payment.Select(payment.Request{Config: cfg, Package: pkg, Pricing: model.Pricing{Total: 100}})

	assert.ErrorIs(t, err, model.ErrIncompleteSchedule)
}

func TestMetadata(t *testing.T) {
	explicit := base(model.FrequencyOneTime, model.TypePerDay).
		WithEmployee("emp-7").
		WithSchedule(model.Schedule{
			Dates:     []time.Time{date(2024, 3, 4), date(2024, 3, 6)},
			StartDate: date(2024, 3, 4),
			EndDate:   date(2024, 3, 6),
			Duration:  2,
		})

	meta := payment.Metadata(explicit, "employer-1")

	assert.Equal(t, "2024-03-04,2024-03-06", meta[model.MetaDates])
	assert.Equal(t, "2024-03-04", meta[model.MetaStartDate])
	assert.Equal(t, "2024-03-06", meta[model.MetaEndDate])
	assert.Equal(t, "emp-7", meta[model.MetaEmployeeID])
	assert.Equal(t, "8", meta[model.MetaHoursPerDay])
	assert.NotContains(t, meta, model.MetaWeekdays)
	assert.NotContains(t, meta, model.MetaBillingRule)

	recurring := base(model.FrequencyOngoing, model.TypePerDay).WithSchedule(model.Schedule{
		Weekdays: model.NewWeekdaySet(time.Wednesday, time.Monday), StartDate: date(2024, 3, 20), Duration: 9,
	})

	meta = payment.Metadata(recurring, "employer-1")

	assert.Equal(t, "Monday,Wednesday", meta[model.MetaWeekdays])
	assert.Equal(t, "weekday_count_per_month", meta[model.MetaBillingRule])
	assert.NotContains(t, meta, model.MetaEndDate)
	assert.NotContains(t, meta, model.MetaDates)
}
