package dto

import (
	"cowork/internal/domains/booking/model"
	billingModel "cowork/internal/domains/billing/model"
	"cowork/shared"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	gModel "cowork/shared/model"
	"cowork/shared/timezone"
	"time"
)

const (
	ScheduleExplicitDates = "explicit_dates"
	ScheduleWeekStart     = "week_start"
	ScheduleMonthStart    = "month_start"
	ScheduleWeekdaySet    = "weekday_set"
)

// ScheduleRequest asks for one schedule generation function. Which fields are
// required depends on Kind and is checked by the service.
type ScheduleRequest struct {
	Kind      string   `json:"kind"       validate:"required,oneof=explicit_dates week_start month_start weekday_set"`
	Dates     []string `json:"dates"      validate:"omitempty,max=366,dive,calendardate"`
	StartDate string   `json:"start_date" validate:"omitempty,calendardate"`
	Weekdays  []int    `json:"weekdays"   validate:"omitempty,max=7,dive,min=0,max=6"`
}

func (r ScheduleRequest) ParsedDates() []time.Time {
	dates := make([]time.Time, 0, len(r.Dates))

	for _, raw := range r.Dates {
		if d, err := timezone.ParseDate(raw); err == nil {
			dates = append(dates, d)
		}
	}

	return dates
}

func (r ScheduleRequest) ParsedStartDate() time.Time {
	d, err := timezone.ParseDate(r.StartDate)
	if err != nil {
		return time.Time{}
	}

	return d
}

type ScheduleResponse struct {
	Kind          string   `json:"kind"`
	Dates         []string `json:"dates,omitempty"`
	Weekdays      []int64  `json:"weekdays,omitempty"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date,omitempty"`
	Duration      int      `json:"duration"`
	OperatingDays []string `json:"operating_days,omitempty"`
	Preview       []string `json:"preview,omitempty"`
}

// FromModel fills the response. Preview is only set for weekday rules.
func (r *ScheduleResponse) FromModel(kind string, schedule model.Schedule, preview []time.Time) {
	r.Kind = kind
	r.Dates = formatDates(schedule.Dates)
	r.Weekdays = schedule.Weekdays.Ints()
	r.StartDate = formatDate(schedule.StartDate)
	r.EndDate = formatDate(schedule.EndDate)
	r.Duration = schedule.Duration
	r.OperatingDays = formatDates(schedule.OperatingDays)
	r.Preview = formatDates(preview)
}

// ConfigurationRequest carries the whole wizard state. The schedule kind follows
// from the frequency and type.
type ConfigurationRequest struct {
	SpaceID     string   `json:"space_id"      validate:"required,max=64"`
	PackageID   string   `json:"package_id"    validate:"required,max=64"`
	EmployeeID  string   `json:"employee_id"   validate:"omitempty,max=64"`
	Frequency   string   `json:"frequency"     validate:"required,oneof=one_time ongoing"`
	Type        string   `json:"type"          validate:"required,oneof=per_day weekly monthly"`
	HoursPerDay int      `json:"hours_per_day" validate:"omitempty,oneof=4 8"`
	Dates       []string `json:"dates"         validate:"omitempty,max=366,dive,calendardate"`
	StartDate   string   `json:"start_date"    validate:"omitempty,calendardate"`
	Weekdays    []int    `json:"weekdays"      validate:"omitempty,max=7,dive,min=0,max=6"`
}

// Base is the configuration without its schedule.
func (r ConfigurationRequest) Base() model.Configuration {
	cfg := model.NewConfiguration().
		WithPackage(r.SpaceID, r.PackageID).
		WithEmployee(r.EmployeeID).
		WithFrequency(model.BookingFrequency(r.Frequency)).
		WithType(model.BookingType(r.Type))

	if r.HoursPerDay != 0 {
		cfg = cfg.WithHoursPerDay(model.HoursPerDay(r.HoursPerDay))
	}

	return cfg
}

// ScheduleRequest maps the combination to its generation function. It returns
// false for combinations that have none.
func (r ConfigurationRequest) ScheduleRequest() (ScheduleRequest, bool) {
	req := ScheduleRequest{Dates: r.Dates, StartDate: r.StartDate, Weekdays: r.Weekdays}

	frequency := model.BookingFrequency(r.Frequency)
	bookingType := model.BookingType(r.Type)

	switch {
	case !model.Supported(frequency, bookingType):
		return req, false
	case bookingType == model.TypeMonthly:
		req.Kind = ScheduleMonthStart
	case bookingType == model.TypeWeekly:
		req.Kind = ScheduleWeekStart
	case frequency == model.FrequencyOngoing:
		req.Kind = ScheduleWeekdaySet
	default:
		req.Kind = ScheduleExplicitDates
	}

	return req, true
}

type CardRequest struct {
	Token      string `json:"token"       validate:"required,max=255"`
	HolderName string `json:"holder_name" validate:"required,max=100"`
}

type BillingRequest struct {
	CompanyName string               `json:"company_name" validate:"required,max=200"`
	Email       string               `json:"email"        validate:"required,email,max=200"`
	Phone       string               `json:"phone"        validate:"omitempty,max=30"`
	TaxID       string               `json:"tax_id"       validate:"omitempty,max=50"`
	Address     model.BillingAddress `json:"address"`
}

func (r BillingRequest) Customer(employerID string) model.Customer {
	return model.Customer{EmployerID: employerID, Email: r.Email, Name: r.CompanyName}
}

func (r BillingRequest) ToModel(id, employerID string, now time.Time) billingModel.Profile {
	return billingModel.Profile{
		ID:           id,
		EmployerID:   employerID,
		CompanyName:  r.CompanyName,
		Email:        r.Email,
		Phone:        r.Phone,
		TaxID:        r.TaxID,
		AddressLine1: r.Address.Line1,
		AddressLine2: r.Address.Line2,
		City:         r.Address.City,
		State:        r.Address.State,
		PostalCode:   r.Address.PostalCode,
		Country:      r.Address.Country,
		Metadata:     gModel.NewMetadata(employerID, now),
	}
}

// SubmitRequest is the final wizard step. Card may be omitted when nothing is due.
type SubmitRequest struct {
	ConfigurationRequest
	Card    *CardRequest   `json:"card"    validate:"omitempty"`
	Billing BillingRequest `json:"billing"`
}

func (r SubmitRequest) CardDetails() model.CardDetails {
	if r.Card == nil {
		return model.CardDetails{}
	}

	return model.CardDetails{Token: r.Card.Token, HolderName: r.Card.HolderName}
}

type ProratedResponse struct {
	FirstCycleCents           int64  `json:"first_cycle_amount_cents"`
	NextCycleCents            int64  `json:"next_cycle_amount_cents"`
	NextBillingDate           string `json:"next_billing_date"`
	RemainingDaysInFirstCycle int    `json:"remaining_days_in_first_cycle"`
	NextCycleDays             int    `json:"next_cycle_days"`
}

type QuoteResponse struct {
	Frequency      string            `json:"frequency"`
	Type           string            `json:"type"`
	HoursPerDay    int               `json:"hours_per_day"`
	Schedule       ScheduleResponse  `json:"schedule"`
	Currency       string            `json:"currency"`
	TotalCents     int64             `json:"total_cents"`
	Total          string            `json:"total"`
	Prorated       *ProratedResponse `json:"prorated,omitempty"`
	PaymentFlow    string            `json:"payment_flow"`
	DueNowCents    int64             `json:"due_now_cents"`
	RecurringCents int64             `json:"recurring_cents,omitempty"`
}

func (r *QuoteResponse) FromModel(cfg model.Configuration, schedule ScheduleResponse, pricing model.Pricing, spec model.PaymentIntentSpec) {
	r.Frequency = string(cfg.Frequency)
	r.Type = string(cfg.Type)
	r.HoursPerDay = int(cfg.HoursPerDay)
	r.Schedule = schedule
	r.Currency = spec.Currency
	r.TotalCents = pricing.Total.Cents()
	r.Total = pricing.Total.String()
	r.PaymentFlow = string(spec.Kind)
	r.DueNowCents = spec.AmountDueNow.Cents()
	r.RecurringCents = spec.RecurringAmount.Cents()

	if pricing.Prorated != nil {
		r.Prorated = &ProratedResponse{
			FirstCycleCents:           pricing.Prorated.FirstCycleAmount.Cents(),
			NextCycleCents:            pricing.Prorated.NextCycleAmount.Cents(),
			NextBillingDate:           formatDate(pricing.Prorated.NextBillingDate),
			RemainingDaysInFirstCycle: pricing.Prorated.RemainingDaysInFirstCycle,
			NextCycleDays:             pricing.Prorated.NextCycleDays,
		}
	}
}

type PaymentResponse struct {
	Flow            string `json:"flow"`
	ID              string `json:"id,omitempty"`
	InitialChargeID string `json:"initial_charge_id,omitempty"`
	Status          string `json:"status"`
}

type BookingResponse struct {
	ID               string          `json:"id"`
	EmployerID       string          `json:"employer_id"`
	EmployeeID       string          `json:"employee_id,omitempty"`
	SpaceID          string          `json:"space_id"`
	PackageID        string          `json:"package_id"`
	Frequency        string          `json:"frequency"`
	Type             string          `json:"type"`
	HoursPerDay      int             `json:"hours_per_day"`
	Dates            []string        `json:"dates,omitempty"`
	Weekdays         []int64         `json:"weekdays,omitempty"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date,omitempty"`
	Duration         int             `json:"duration"`
	TotalCents       int64           `json:"total_cents"`
	FirstCycleCents  int64           `json:"first_cycle_amount_cents,omitempty"`
	NextCycleCents   int64           `json:"next_cycle_amount_cents,omitempty"`
	NextBillingDate  string          `json:"next_billing_date,omitempty"`
	Currency         string          `json:"currency"`
	Payment          PaymentResponse `json:"payment"`
	Status           string          `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking) {
	r.ID = booking.ID
	r.EmployerID = booking.EmployerID
	r.EmployeeID = booking.EmployeeID.String
	r.SpaceID = booking.SpaceID
	r.PackageID = booking.PackageID
	r.Frequency = string(booking.Frequency)
	r.Type = string(booking.BookingType)
	r.HoursPerDay = booking.HoursPerDay
	r.Dates = booking.SelectedDates
	r.Weekdays = booking.SelectedWeekdays
	r.StartDate = formatDate(booking.StartDate)
	r.Duration = booking.Duration
	r.TotalCents = booking.TotalAmount.Cents()
	r.FirstCycleCents = booking.FirstCycleAmount.Cents()
	r.NextCycleCents = booking.NextCycleAmount.Cents()
	r.Currency = booking.Currency
	r.Payment = PaymentResponse{
		Flow:            string(booking.PaymentFlow),
		ID:              booking.PaymentID,
		InitialChargeID: booking.InitialChargeID,
		Status:          booking.PaymentStatus,
	}
	r.Status = booking.Status
	r.Metadata.FromModel(booking.Metadata)

	if booking.EndDate.Valid {
		r.EndDate = formatDate(booking.EndDate.Time)
	}

	if booking.NextBillingDate.Valid {
		r.NextBillingDate = formatDate(booking.NextBillingDate.Time)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}

	return d.Format(constant.CalendarFormat)
}

func formatDates(dates []time.Time) []string {
	if len(dates) == 0 {
		return nil
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = formatDate(d)
	}

	return out
}
