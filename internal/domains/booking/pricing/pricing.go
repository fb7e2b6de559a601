// Package pricing computes what a booking configuration costs. Every function is
// pure: the same configuration and rate card always give the same amounts.
package pricing

import (
	"time"

	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/schedule"
	rcModel "cowork/internal/domains/ratecard/model"
	gModel "cowork/shared/model"
)

// DailyRate is the per-day rate for the given hours. A half day costs half the
// daily rate rounded half-up to the cent.
func DailyRate(rates rcModel.RateCard, hours model.HoursPerDay) gModel.Money {
	if hours == model.HalfDay {
		return rates.Daily.Half()
	}

	return rates.Daily
}

// ComputeTotal returns the price of the booking. A one-time per-day booking is
// priced by its distinct selected dates, not its stored duration. For a recurring
// per-day booking it is the prorated amount of the first cycle.
func ComputeTotal(cfg model.Configuration, rates *rcModel.RateCard) (gModel.Money, error) {
	if err := checkPreconditions(cfg, rates); err != nil {
		return 0, err
	}

	switch {
	case cfg.Type == model.TypeMonthly:
		return rates.Monthly, nil
	case cfg.Type == model.TypeWeekly && cfg.Frequency == model.FrequencyOneTime:
		return rates.Weekly, nil
	case cfg.Type == model.TypePerDay && cfg.Frequency == model.FrequencyOneTime:
		days := len(model.SortedUniqueDates(cfg.SelectedDates))
		if days == 0 {
			return 0, model.ErrIncompleteSchedule
		}

		return DailyRate(*rates, cfg.HoursPerDay).Times(days), nil
	case cfg.Type == model.TypePerDay && cfg.Frequency == model.FrequencyOngoing:
		prorated, err := ComputeProratedBilling(cfg, rates)
		if err != nil {
			return 0, err
		}

		return prorated.FirstCycleAmount, nil
	}

	return 0, &model.UnsupportedCombinationError{Frequency: cfg.Frequency, Type: cfg.Type}
}

// ComputeProratedBilling splits a recurring per-day booking into the partial first
// month and the following full month, using the real count of matching weekdays.
func ComputeProratedBilling(cfg model.Configuration, rates *rcModel.RateCard) (model.ProratedBilling, error) {
	if err := checkPreconditions(cfg, rates); err != nil {
		return model.ProratedBilling{}, err
	}

	if cfg.Frequency != model.FrequencyOngoing || cfg.Type != model.TypePerDay {
		return model.ProratedBilling{}, &model.UnsupportedCombinationError{Frequency: cfg.Frequency, Type: cfg.Type}
	}

	if cfg.SelectedWeekdays.IsEmpty() {
		return model.ProratedBilling{}, model.ErrIncompleteSchedule
	}

	daily := DailyRate(*rates, cfg.HoursPerDay)
	start := cfg.StartDate

	nextMonth := firstOfMonth(start).AddDate(0, 1, 0)
	remaining := schedule.CountMatching(cfg.SelectedWeekdays, start, nextMonth.AddDate(0, 0, -1))
	nextDays := schedule.CountMatching(cfg.SelectedWeekdays, nextMonth, nextMonth.AddDate(0, 1, -1))

	return model.ProratedBilling{
		FirstCycleAmount:          daily.Times(remaining),
		NextCycleAmount:           daily.Times(nextDays),
		NextBillingDate:           nextMonth,
		RemainingDaysInFirstCycle: remaining,
		NextCycleDays:             nextDays,
	}, nil
}

// CycleAmount is the charge for a full calendar month of a recurring per-day booking.
func CycleAmount(weekdays model.WeekdaySet, daily gModel.Money, month time.Time) gModel.Money {
	first := firstOfMonth(month)

	return daily.Times(schedule.CountMatching(weekdays, first, first.AddDate(0, 1, -1)))
}

// Price bundles the total with the prorated split when the booking recurs per day.
func Price(cfg model.Configuration, rates *rcModel.RateCard) (model.Pricing, error) {
	total, err := ComputeTotal(cfg, rates)
	if err != nil {
		return model.Pricing{}, err
	}

	pricing := model.Pricing{Total: total}

	if cfg.Frequency == model.FrequencyOngoing && cfg.Type == model.TypePerDay {
		prorated, err := ComputeProratedBilling(cfg, rates)
		if err != nil {
			return model.Pricing{}, err
		}

		pricing.Prorated = &prorated
	}

	return pricing, nil
}

func checkPreconditions(cfg model.Configuration, rates *rcModel.RateCard) error {
	if rates == nil || !cfg.HasPackage() {
		return model.ErrNoPackageSelected
	}

	if !cfg.HasSchedule() {
		return model.ErrIncompleteSchedule
	}

	if !model.Supported(cfg.Frequency, cfg.Type) {
		return &model.UnsupportedCombinationError{Frequency: cfg.Frequency, Type: cfg.Type}
	}

	return nil
}

func firstOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
