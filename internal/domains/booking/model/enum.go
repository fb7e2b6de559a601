package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type BookingFrequency string

const (
	FrequencyOneTime BookingFrequency = "one_time"
	FrequencyOngoing BookingFrequency = "ongoing"
)

func (f BookingFrequency) Valid() bool {
	return f == FrequencyOneTime || f == FrequencyOngoing
}

type BookingType string

const (
	TypePerDay  BookingType = "per_day"
	TypeWeekly  BookingType = "weekly"
	TypeMonthly BookingType = "monthly"
)

func (t BookingType) Valid() bool {
	return t == TypePerDay || t == TypeWeekly || t == TypeMonthly
}

// Supported reports whether the frequency and type pair is a bookable combination.
func Supported(f BookingFrequency, t BookingType) bool {
	if !f.Valid() || !t.Valid() {
		return false
	}

	return !(f == FrequencyOngoing && t == TypeWeekly)
}

type HoursPerDay int

const (
	HalfDay HoursPerDay = 4
	FullDay HoursPerDay = 8
)

func (h HoursPerDay) Valid() bool {
	return h == HalfDay || h == FullDay
}

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet

	for _, day := range days {
		set = set.With(day)
	}

	return set
}

// WeekdaySetFromInts builds a set from weekday numbers 0 (Sunday) to 6 (Saturday).
func WeekdaySetFromInts(days []int) (WeekdaySet, error) {
	var set WeekdaySet

	for _, day := range days {
		if day < int(time.Sunday) || day > int(time.Saturday) {
			return 0, fmt.Errorf("weekday %d out of range 0-6", day)
		}

		set = set.With(time.Weekday(day))
	}

	return set, nil
}

func (s WeekdaySet) With(day time.Weekday) WeekdaySet {
	return s | 1<<uint(day)
}

func (s WeekdaySet) Has(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

func (s WeekdaySet) Len() int {
	n := 0

	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Has(day) {
			n++
		}
	}

	return n
}

// HasWeekend reports whether Saturday or Sunday is in the set.
func (s WeekdaySet) HasWeekend() bool {
	return s.Has(time.Saturday) || s.Has(time.Sunday)
}

// Days returns the members in ascending order starting from Sunday.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, s.Len())

	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Has(day) {
			days = append(days, day)
		}
	}

	return days
}

func (s WeekdaySet) Ints() []int64 {
	days := s.Days()
	ints := make([]int64, len(days))

	for i, day := range days {
		ints[i] = int64(day)
	}

	return ints
}

func (s WeekdaySet) Names() []string {
	days := s.Days()
	names := make([]string, len(days))

	for i, day := range days {
		names[i] = day.String()
	}

	return names
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Ints()) // nolint:wrapcheck
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("weekday set: %w", err)
	}

	set, err := WeekdaySetFromInts(days)
	if err != nil {
		return err
	}

	*s = set

	return nil
}

// IsOperatingDay reports whether the space is open on d (Monday to Friday).
func IsOperatingDay(d time.Time) bool {
	wd := d.Weekday()

	return wd != time.Saturday && wd != time.Sunday
}

// SortedUniqueDates returns the calendar dates sorted ascending with duplicates removed.
func SortedUniqueDates(dates []time.Time) []time.Time {
	out := slices.Clone(dates)

	slices.SortFunc(out, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return slices.CompactFunc(out, func(a, b time.Time) bool {
		return a.Equal(b)
	})
}
