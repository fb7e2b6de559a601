package pricing_test

import (
	"errors"
	"testing"
	"time"

	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/pricing"
	"cowork/internal/domains/booking/schedule"
	rcModel "cowork/internal/domains/ratecard/model"
	gModel "cowork/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var rates = &rcModel.RateCard{Daily: 10000, Weekly: 45000, Monthly: 160000}

func oneTimePerDay(hours model.HoursPerDay, dates ...time.Time) model.Configuration {
	sched := model.Schedule{Dates: dates, Duration: len(dates)}
	if len(dates) > 0 {
		sched.StartDate = dates[0]
		sched.EndDate = dates[len(dates)-1]
	}

	return model.NewConfiguration().
		WithPackage("space-1", "pkg-1").
		WithFrequency(model.FrequencyOneTime).
		WithType(model.TypePerDay).
		WithHoursPerDay(hours).
		WithSchedule(sched)
}

func ongoingPerDay(hours model.HoursPerDay, start time.Time, days ...time.Weekday) model.Configuration {
	return model.NewConfiguration().
		WithPackage("space-1", "pkg-1").
		WithFrequency(model.FrequencyOngoing).
		WithType(model.TypePerDay).
		WithHoursPerDay(hours).
		WithSchedule(model.Schedule{
			Weekdays:  model.NewWeekdaySet(days...),
			StartDate: start,
			Duration:  1,
		})
}

func block(frequency model.BookingFrequency, kind model.BookingType, start time.Time, duration int) model.Configuration {
	return model.NewConfiguration().
		WithPackage("space-1", "pkg-1").
		WithFrequency(frequency).
		WithType(kind).
		WithSchedule(model.Schedule{StartDate: start, EndDate: start.AddDate(0, 0, 29), Duration: duration})
}

func TestComputeTotal_ExplicitDates(t *testing.T) {
	cfg := oneTimePerDay(model.FullDay, date(2024, 3, 4), date(2024, 3, 5), date(2024, 3, 6))

	total, err := pricing.ComputeTotal(cfg, rates)

	require.NoError(t, err)
	assert.Equal(t, gModel.Money(30000), total)
	assert.Equal(t, "300.00", total.String())
}

func TestComputeTotal_LinearInDuration(t *testing.T) {
	oddRates := &rcModel.RateCard{Daily: 10001}

	for _, hours := range []model.HoursPerDay{model.HalfDay, model.FullDay} {
		one, err := pricing.ComputeTotal(oneTimePerDay(hours, date(2024, 3, 4)), oddRates)
		require.NoError(t, err)

		dates := []time.Time{}
		for n := 1; n <= 40; n++ {
			dates = append(dates, date(2024, 3, 3+n))

			got, err := pricing.ComputeTotal(oneTimePerDay(hours, dates...), oddRates)
			require.NoError(t, err)
			assert.Equal(t, one.Times(n), got, "hours %d n %d", hours, n)
		}
	}
}

func TestComputeTotal_ExplicitDatesIgnoreStoredDuration(t *testing.T) {
	dates := []time.Time{date(2024, 3, 4), date(2024, 3, 5), date(2024, 3, 5)}

	cfg := oneTimePerDay(model.FullDay, dates...)
	cfg.Duration = 10

	total, err := pricing.ComputeTotal(cfg, rates)

	require.NoError(t, err)
	assert.Equal(t, gModel.Money(20000), total)

	cfg.SelectedDates = nil

	_, err = pricing.ComputeTotal(cfg, rates)
	assert.ErrorIs(t, err, model.ErrIncompleteSchedule)
}

func TestComputeTotal_HalfDay(t *testing.T) {
	cfg := oneTimePerDay(model.HalfDay, date(2024, 3, 4), date(2024, 3, 5))

	total, err := pricing.ComputeTotal(cfg, &rcModel.RateCard{Daily: 10001})

	require.NoError(t, err)
	assert.Equal(t, gModel.Money(10002), total)
}

func TestComputeTotal_Blocks(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.Configuration
		want gModel.Money
	}{
		{name: "one-time weekly", cfg: block(model.FrequencyOneTime, model.TypeWeekly, date(2024, 3, 4), 5), want: 45000},
		{name: "one-time monthly", cfg: block(model.FrequencyOneTime, model.TypeMonthly, date(2024, 3, 4), 22), want: 160000},
		{name: "ongoing monthly", cfg: block(model.FrequencyOngoing, model.TypeMonthly, date(2024, 3, 4), 22), want: 160000},
		{
			name: "monthly ignores hours",
			cfg:  block(model.FrequencyOneTime, model.TypeMonthly, date(2024, 3, 4), 22).WithHoursPerDay(model.HalfDay),
			want: 160000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.ComputeTotal(tt.cfg, rates)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal_Preconditions(t *testing.T) {
	valid := oneTimePerDay(model.FullDay, date(2024, 3, 4))

	tests := []struct {
		name    string
		cfg     model.Configuration
		rates   *rcModel.RateCard
		wantErr error
	}{
		{name: "no rate card", cfg: valid, rates: nil, wantErr: model.ErrNoPackageSelected},
		{name: "no package id", cfg: valid.WithPackage("space-1", ""), rates: rates, wantErr: model.ErrNoPackageSelected},
		{name: "no schedule", cfg: valid.WithSchedule(model.Schedule{}), rates: rates, wantErr: model.ErrIncompleteSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := pricing.ComputeTotal(tt.cfg, tt.rates)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, total)
		})
	}
}

func TestComputeTotal_OngoingWeeklyUnsupported(t *testing.T) {
	cfg := block(model.FrequencyOngoing, model.TypeWeekly, date(2024, 3, 4), 5)

	_, err := pricing.ComputeTotal(cfg, rates)

	var unsupported *model.UnsupportedCombinationError
	assert.True(t, errors.As(err, &unsupported))
}

func TestComputeProratedBilling_MidMonthStart(t *testing.T) {
	cfg := ongoingPerDay(model.FullDay, date(2024, 3, 20), time.Monday, time.Wednesday)

	got, err := pricing.ComputeProratedBilling(cfg, rates)
	require.NoError(t, err)

	// Wed 3/20, Mon 3/25, Wed 3/27
	assert.Equal(t, 3, got.RemainingDaysInFirstCycle)
	assert.Equal(t, gModel.Money(30000), got.FirstCycleAmount)

	// April 2024 has five Mondays and four Wednesdays
	assert.Equal(t, 9, got.NextCycleDays)
	assert.Equal(t, gModel.Money(90000), got.NextCycleAmount)
	assert.Equal(t, date(2024, 4, 1), got.NextBillingDate)

	total, err := pricing.ComputeTotal(cfg, rates)
	require.NoError(t, err)
	assert.Equal(t, got.FirstCycleAmount, total)
}

func TestComputeProratedBilling_YearRollover(t *testing.T) {
	cfg := ongoingPerDay(model.HalfDay, date(2024, 12, 16), time.Monday)

	got, err := pricing.ComputeProratedBilling(cfg, &rcModel.RateCard{Daily: 10001})
	require.NoError(t, err)

	assert.Equal(t, 3, got.RemainingDaysInFirstCycle)
	assert.Equal(t, gModel.Money(15003), got.FirstCycleAmount)
	assert.Equal(t, 4, got.NextCycleDays)
	assert.Equal(t, gModel.Money(20004), got.NextCycleAmount)
	assert.Equal(t, date(2025, 1, 1), got.NextBillingDate)
}

func TestComputeProratedBilling_FirstCycleCanExceedNext(t *testing.T) {
	// March 2024 has five Fridays, April has four
	cfg := ongoingPerDay(model.FullDay, date(2024, 3, 1), time.Friday)

	got, err := pricing.ComputeProratedBilling(cfg, rates)
	require.NoError(t, err)

	assert.Equal(t, 5, got.RemainingDaysInFirstCycle)
	assert.Equal(t, 4, got.NextCycleDays)
	assert.Greater(t, got.FirstCycleAmount, got.NextCycleAmount)
}

func TestComputeProratedBilling_OnlyFirstCycleIsAdjusted(t *testing.T) {
	weekdays := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	starts := []time.Time{date(2024, 3, 20), date(2024, 1, 1), date(2024, 2, 29), date(2024, 11, 13)}

	for _, start := range starts {
		cfg := ongoingPerDay(model.FullDay, start, weekdays...)

		got, err := pricing.ComputeProratedBilling(cfg, rates)
		require.NoError(t, err)

		daily := pricing.DailyRate(*rates, model.FullDay)
		sum := got.FirstCycleAmount

		for m := range 12 {
			month := got.NextBillingDate.AddDate(0, m, 0)
			amount := pricing.CycleAmount(cfg.SelectedWeekdays, daily, month)

			if m == 0 {
				assert.Equal(t, got.NextCycleAmount, amount)
			}

			sum += amount
		}

		lastDay := got.NextBillingDate.AddDate(0, 12, -1)
		unprorated := daily.Times(schedule.CountMatching(cfg.SelectedWeekdays, start, lastDay))

		assert.Equal(t, unprorated, sum, "start %s", start)
	}
}

func TestComputeProratedBilling_RejectsOtherCombinations(t *testing.T) {
	_, err := pricing.ComputeProratedBilling(oneTimePerDay(model.FullDay, date(2024, 3, 4)), rates)

	var unsupported *model.UnsupportedCombinationError
	assert.True(t, errors.As(err, &unsupported))
}

func TestPrice(t *testing.T) {
	recurring, err := pricing.Price(ongoingPerDay(model.FullDay, date(2024, 3, 20), time.Monday, time.Wednesday), rates)
	require.NoError(t, err)
	require.NotNil(t, recurring.Prorated)
	assert.Equal(t, gModel.Money(30000), recurring.DueNow())
	assert.Equal(t, gModel.Money(30000), recurring.Total)

	oneTime, err := pricing.Price(oneTimePerDay(model.FullDay, date(2024, 3, 4)), rates)
	require.NoError(t, err)
	assert.Nil(t, oneTime.Prorated)
	assert.Equal(t, gModel.Money(10000), oneTime.DueNow())
}
