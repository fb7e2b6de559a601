package timezone

import (
	"cowork/config"
	"cowork/shared/constant"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var location = sync.OnceValue(loadLocation)

func loadLocation() *time.Location {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names like 'Asia/Jakarta' or 'America/New_York'")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

func GetLocation() *time.Location {
	return location()
}

// Format formats a time in the application timezone.
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Today is the current calendar date where the spaces operate.
func Today() time.Time {
	return CalendarDate(Now())
}

// CalendarDate drops the clock part of t, keeping the year, month and day
// as observed in t's own location. The result is midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(constant.CalendarFormat, value) //nolint:wrapcheck
}
