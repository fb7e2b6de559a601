// Package timezone holds the calendar rules shared by scheduling and storage.
//
// Booking dates are calendar days, not instants: they are kept as midnight UTC
// so that a day picked in Jakarta and one picked in New York compare equal.
// Only "today" depends on where the spaces operate, which is configured with
// APP_TIMEZONE using IANA names such as "Asia/Jakarta". The location is loaded
// on first use; an unknown or empty name falls back to UTC.
package timezone
