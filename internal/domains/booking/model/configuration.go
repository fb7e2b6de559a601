package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"cowork/shared/constant"
)

// Schedule is the output of one schedule generation function.
// Dates is set only for explicit selections; OperatingDays lists the days a
// weekly or monthly block covers and is informational.
type Schedule struct {
	Dates         []time.Time `json:"dates,omitempty"`
	Weekdays      WeekdaySet  `json:"weekdays,omitempty"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date,omitzero"`
	Duration      int         `json:"duration"`
	OperatingDays []time.Time `json:"operating_days,omitempty"`
}

// Configuration is the booking being assembled by the wizard. Values are never
// mutated in place: every With* transition returns a new Configuration.
type Configuration struct {
	SpaceID     string
	PackageID   string
	EmployeeID  string
	Frequency   BookingFrequency
	Type        BookingType
	HoursPerDay HoursPerDay

	SelectedDates    []time.Time
	SelectedWeekdays WeekdaySet
	StartDate        time.Time
	EndDate          time.Time
	Duration         int
}

func NewConfiguration() Configuration {
	return Configuration{HoursPerDay: FullDay}
}

func (c Configuration) WithPackage(spaceID, packageID string) Configuration {
	c.SpaceID = spaceID
	c.PackageID = packageID
	c.SelectedDates = slices.Clone(c.SelectedDates)

	return c
}

func (c Configuration) WithEmployee(employeeID string) Configuration {
	c.EmployeeID = employeeID
	c.SelectedDates = slices.Clone(c.SelectedDates)

	return c
}

// WithFrequency switches the frequency and drops every schedule field when it changes.
func (c Configuration) WithFrequency(frequency BookingFrequency) Configuration {
	if c.Frequency == frequency {
		c.SelectedDates = slices.Clone(c.SelectedDates)

		return c
	}

	c = c.withoutSchedule()
	c.Frequency = frequency

	return c
}

// WithType switches the booking type and drops every schedule field when it changes.
func (c Configuration) WithType(bookingType BookingType) Configuration {
	if c.Type == bookingType {
		c.SelectedDates = slices.Clone(c.SelectedDates)

		return c
	}

	c = c.withoutSchedule()
	c.Type = bookingType

	return c
}

func (c Configuration) WithHoursPerDay(hours HoursPerDay) Configuration {
	c.HoursPerDay = hours
	c.SelectedDates = slices.Clone(c.SelectedDates)

	return c
}

// WithSchedule replaces the schedule fields with a generated schedule.
func (c Configuration) WithSchedule(schedule Schedule) Configuration {
	c.SelectedDates = slices.Clone(schedule.Dates)
	c.SelectedWeekdays = schedule.Weekdays
	c.StartDate = schedule.StartDate
	c.EndDate = schedule.EndDate
	c.Duration = schedule.Duration

	return c
}

func (c Configuration) withoutSchedule() Configuration {
	c.SelectedDates = nil
	c.SelectedWeekdays = 0
	c.StartDate = time.Time{}
	c.EndDate = time.Time{}
	c.Duration = 0

	return c
}

func (c Configuration) HasPackage() bool {
	return c.PackageID != "" && c.SpaceID != ""
}

func (c Configuration) HasSchedule() bool {
	return c.Duration > 0 && !c.StartDate.IsZero()
}

func (c Configuration) IsOngoing() bool {
	return c.Frequency == FrequencyOngoing
}

// Validate checks the structural invariants and returns the first violation.
func (c Configuration) Validate() error {
	switch {
	case c.SpaceID == "":
		return &ValidationError{Field: "space_id", Reason: "is required"}
	case c.PackageID == "":
		return &ValidationError{Field: "package_id", Reason: "is required"}
	case !c.Frequency.Valid():
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", c.Frequency)}
	case !c.Type.Valid():
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown booking type %q", c.Type)}
	case !Supported(c.Frequency, c.Type):
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("%s is not available for %s bookings", c.Type, c.Frequency)}
	case c.Type == TypePerDay && !c.HoursPerDay.Valid():
		return &ValidationError{Field: "hours_per_day", Reason: "must be 4 or 8"}
	}

	return c.validateSchedule()
}

func (c Configuration) validateSchedule() error {
	switch {
	case c.Frequency == FrequencyOneTime && c.Type == TypePerDay:
		if len(c.SelectedDates) == 0 {
			return &ValidationError{Field: "selected_dates", Reason: "at least one date is required"}
		}

		if !c.SelectedWeekdays.IsEmpty() {
			return &ValidationError{Field: "selected_weekdays", Reason: "must be empty for one-time per-day bookings"}
		}

		if c.Duration != len(c.SelectedDates) {
			return &ValidationError{Field: "duration", Reason: "does not match the selected dates"}
		}

		if !c.StartDate.Equal(c.SelectedDates[0]) || !c.EndDate.Equal(c.SelectedDates[len(c.SelectedDates)-1]) {
			return &ValidationError{Field: "start_date", Reason: "does not match the selected dates"}
		}
	case c.Frequency == FrequencyOngoing && c.Type == TypePerDay:
		if c.SelectedWeekdays.IsEmpty() {
			return &ValidationError{Field: "selected_weekdays", Reason: "at least one weekday is required"}
		}

		if len(c.SelectedDates) > 0 {
			return &ValidationError{Field: "selected_dates", Reason: "must be empty for recurring bookings"}
		}
	default:
		if len(c.SelectedDates) > 0 {
			return &ValidationError{Field: "selected_dates", Reason: "must be empty for " + string(c.Type) + " bookings"}
		}

		if !c.SelectedWeekdays.IsEmpty() {
			return &ValidationError{Field: "selected_weekdays", Reason: "must be empty for " + string(c.Type) + " bookings"}
		}
	}

	if c.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "is required"}
	}

	if c.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	}

	return nil
}

// Fingerprint identifies the booking a configuration would produce.
// Two submissions with the same fingerprint would charge for the same thing.
func (c Configuration) Fingerprint(employerID string) string {
	dates := make([]string, len(c.SelectedDates))
	for i, d := range c.SelectedDates {
		dates[i] = d.Format(constant.CalendarFormat)
	}

	raw := strings.Join([]string{
		employerID,
		c.SpaceID,
		c.PackageID,
		c.EmployeeID,
		string(c.Frequency),
		string(c.Type),
		fmt.Sprint(int(c.HoursPerDay)),
		strings.Join(dates, ","),
		fmt.Sprint(c.SelectedWeekdays.Ints()),
		c.StartDate.Format(constant.CalendarFormat),
	}, "|")

	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
