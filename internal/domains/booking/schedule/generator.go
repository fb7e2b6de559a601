package schedule

import (
	"iter"
	"time"

	"cowork/config"
	"cowork/internal/domains/booking/model"
	"cowork/shared/timezone"
)

const (
	weekBlockDays   = 5
	monthWindowDays = 30
	previewDays     = 30
)

// Generator turns a date selection into schedule fields. It keeps no state
// besides its settings, so one instance is shared by every request.
type Generator interface {
	FromExplicitDates(dates []time.Time) (model.Schedule, error)
	FromWeekStart(weekStart time.Time) (model.Schedule, error)
	FromMonthStart(monthStart time.Time) (model.Schedule, error)
	FromWeekdaySet(weekdays model.WeekdaySet, startDate time.Time) (model.Schedule, error)
	PreviewNext30Days(weekdays model.WeekdaySet, startDate time.Time) iter.Seq[time.Time]
}

type generatorImpl struct {
	today           func() time.Time
	disableWeekends bool
}

func New(cfg *config.Config) Generator {
	return NewWithClock(cfg, timezone.Today)
}

// NewWithClock is New with a custom source for the current calendar date.
func NewWithClock(cfg *config.Config, today func() time.Time) Generator {
	return &generatorImpl{
		today:           today,
		disableWeekends: cfg.Booking.DisableWeekends,
	}
}

func (g *generatorImpl) FromExplicitDates(dates []time.Time) (model.Schedule, error) {
	if len(dates) == 0 {
		return model.Schedule{}, &model.ValidationError{Field: "selected_dates", Reason: "at least one date is required"}
	}

	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = timezone.CalendarDate(d)
	}

	normalized = model.SortedUniqueDates(normalized)

	for _, d := range normalized {
		if err := g.checkNotPast(d); err != nil {
			return model.Schedule{}, err
		}

		if g.disableWeekends && !model.IsOperatingDay(d) {
			return model.Schedule{}, &model.InvalidStartDateError{Date: d, Reason: "the space is closed on weekends"}
		}
	}

	return model.Schedule{
		Dates:     normalized,
		StartDate: normalized[0],
		EndDate:   normalized[len(normalized)-1],
		Duration:  len(normalized),
	}, nil
}

// FromWeekStart books five consecutive operating days. A weekend start rolls
// forward to the following Monday.
func (g *generatorImpl) FromWeekStart(weekStart time.Time) (model.Schedule, error) {
	start := timezone.CalendarDate(weekStart)

	if err := g.checkNotPast(start); err != nil {
		return model.Schedule{}, err
	}

	start = nextOperatingDay(start)

	days := make([]time.Time, 0, weekBlockDays)
	for d := start; len(days) < weekBlockDays; d = d.AddDate(0, 0, 1) {
		if model.IsOperatingDay(d) {
			days = append(days, d)
		}
	}

	return model.Schedule{
		StartDate:     start,
		EndDate:       days[len(days)-1],
		Duration:      weekBlockDays,
		OperatingDays: days,
	}, nil
}

// FromMonthStart books a 30 calendar day window. Only operating days count toward duration.
func (g *generatorImpl) FromMonthStart(monthStart time.Time) (model.Schedule, error) {
	start := timezone.CalendarDate(monthStart)

	if err := g.checkNotPast(start); err != nil {
		return model.Schedule{}, err
	}

	if !model.IsOperatingDay(start) {
		return model.Schedule{}, &model.InvalidStartDateError{Date: start, Reason: "monthly bookings must start on an operating day"}
	}

	end := start.AddDate(0, 0, monthWindowDays-1)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if model.IsOperatingDay(d) {
			days = append(days, d)
		}
	}

	return model.Schedule{
		StartDate:     start,
		EndDate:       end,
		Duration:      len(days),
		OperatingDays: days,
	}, nil
}

// FromWeekdaySet returns the recurrence rule itself. Duration is the number of
// matching days in the preview window and only gates wizard progression.
func (g *generatorImpl) FromWeekdaySet(weekdays model.WeekdaySet, startDate time.Time) (model.Schedule, error) {
	if weekdays.IsEmpty() {
		return model.Schedule{}, &model.ValidationError{Field: "selected_weekdays", Reason: "at least one weekday is required"}
	}

	if g.disableWeekends && weekdays.HasWeekend() {
		return model.Schedule{}, &model.ValidationError{Field: "selected_weekdays", Reason: "weekends are not operating days"}
	}

	start := timezone.CalendarDate(startDate)

	if err := g.checkNotPast(start); err != nil {
		return model.Schedule{}, err
	}

	if g.disableWeekends && !model.IsOperatingDay(start) {
		return model.Schedule{}, &model.InvalidStartDateError{Date: start, Reason: "the space is closed on weekends"}
	}

	duration := 0
	for range g.PreviewNext30Days(weekdays, start) {
		duration++
	}

	return model.Schedule{
		Weekdays:  weekdays,
		StartDate: start,
		Duration:  duration,
	}, nil
}

// PreviewNext30Days yields the matching dates among the 30 calendar days from
// startDate, for display only. The sequence can be ranged over any number of times.
func (g *generatorImpl) PreviewNext30Days(weekdays model.WeekdaySet, startDate time.Time) iter.Seq[time.Time] {
	start := timezone.CalendarDate(startDate)

	return func(yield func(time.Time) bool) {
		for i := range previewDays {
			d := start.AddDate(0, 0, i)
			if !weekdays.Has(d.Weekday()) {
				continue
			}

			if !yield(d) {
				return
			}
		}
	}
}

func (g *generatorImpl) checkNotPast(d time.Time) error {
	if d.Before(g.today()) {
		return &model.InvalidStartDateError{Date: d, Reason: "date is in the past"}
	}

	return nil
}

func nextOperatingDay(d time.Time) time.Time {
	for !model.IsOperatingDay(d) {
		d = d.AddDate(0, 0, 1)
	}

	return d
}

// CountMatching counts dates in [from, to] whose weekday is in the set.
func CountMatching(weekdays model.WeekdaySet, from, to time.Time) int {
	n := 0

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if weekdays.Has(d.Weekday()) {
			n++
		}
	}

	return n
}
