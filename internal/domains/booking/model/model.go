package model

import (
	"database/sql"
	"time"

	"cowork/shared/constant"
	gModel "cowork/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "coworking_bookings"
	EntityName = "booking"

	FieldID             = "id"
	FieldEmployerID     = "employer_id"
	FieldEmployeeID     = "employee_id"
	FieldSpaceID        = "space_id"
	FieldPackageID      = "package_id"
	FieldFrequency      = "frequency"
	FieldBookingType    = "booking_type"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldStatus         = "status"
	FieldPaymentID      = "payment_id"
	FieldIdempotencyKey = "idempotency_key"
	FieldCreatedBy      = "created_by"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is the persisted booking record.
type Booking struct {
	ID               string           `db:"id"`
	EmployerID       string           `db:"employer_id"`
	EmployeeID       sql.NullString   `db:"employee_id"`
	SpaceID          string           `db:"space_id"`
	PackageID        string           `db:"package_id"`
	Frequency        BookingFrequency `db:"frequency"`
	BookingType      BookingType      `db:"booking_type"`
	HoursPerDay      int              `db:"hours_per_day"`
	SelectedDates    pq.StringArray   `db:"selected_dates"`
	SelectedWeekdays pq.Int64Array    `db:"selected_weekdays"`
	StartDate        time.Time        `db:"start_date"`
	EndDate          sql.NullTime     `db:"end_date"`
	Duration         int              `db:"duration"`
	TotalAmount      gModel.Money     `db:"total_amount_cents"`
	FirstCycleAmount gModel.Money     `db:"first_cycle_amount_cents"`
	NextCycleAmount  gModel.Money     `db:"next_cycle_amount_cents"`
	NextBillingDate  sql.NullTime     `db:"next_billing_date"`
	Currency         string           `db:"currency"`
	PaymentFlow      PaymentFlow      `db:"payment_flow"`
	PaymentID        string           `db:"payment_id"`
	InitialChargeID  string           `db:"initial_charge_id"`
	PaymentStatus    string           `db:"payment_status"`
	IdempotencyKey   string           `db:"idempotency_key"`
	Status           string           `db:"status"`
	gModel.Metadata
}

// NewBooking assembles the record for a paid (or free) configuration.
func NewBooking(id, employerID string, cfg Configuration, pricing Pricing, spec PaymentIntentSpec, result PaymentResult, now time.Time) Booking {
	dates := make(pq.StringArray, len(cfg.SelectedDates))
	for i, d := range cfg.SelectedDates {
		dates[i] = d.Format(constant.CalendarFormat)
	}

	booking := Booking{
		ID:               id,
		EmployerID:       employerID,
		EmployeeID:       sql.NullString{String: cfg.EmployeeID, Valid: cfg.EmployeeID != ""},
		SpaceID:          cfg.SpaceID,
		PackageID:        cfg.PackageID,
		Frequency:        cfg.Frequency,
		BookingType:      cfg.Type,
		HoursPerDay:      int(cfg.HoursPerDay),
		SelectedDates:    dates,
		SelectedWeekdays: pq.Int64Array(cfg.SelectedWeekdays.Ints()),
		StartDate:        cfg.StartDate,
		Duration:         cfg.Duration,
		TotalAmount:      pricing.Total,
		Currency:         spec.Currency,
		PaymentFlow:      spec.Kind,
		PaymentID:        result.ID,
		InitialChargeID:  result.InitialChargeID,
		PaymentStatus:    result.Status,
		IdempotencyKey:   spec.IdempotencyKey,
		Status:           StatusConfirmed,
		Metadata:         gModel.NewMetadata(employerID, now),
	}

	if !cfg.IsOngoing() {
		booking.EndDate = sql.NullTime{Time: cfg.EndDate, Valid: !cfg.EndDate.IsZero()}
	}

	if pricing.Prorated != nil {
		booking.FirstCycleAmount = pricing.Prorated.FirstCycleAmount
		booking.NextCycleAmount = pricing.Prorated.NextCycleAmount
		booking.NextBillingDate = sql.NullTime{Time: pricing.Prorated.NextBillingDate, Valid: true}
	}

	return booking
}

