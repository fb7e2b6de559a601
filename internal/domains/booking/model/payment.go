package model

import (
	"time"

	gModel "cowork/shared/model"
)

type PaymentFlow string

const (
	FlowOneTimeCharge         PaymentFlow = "one_time_charge"
	FlowRecurringSubscription PaymentFlow = "recurring_subscription"
	FlowNone                  PaymentFlow = "none"
)

const (
	PaymentStatusSucceeded   = "succeeded"
	PaymentStatusActive      = "active"
	PaymentStatusTrialing    = "trialing"
	PaymentStatusNotRequired = "not_required"
)

// Metadata keys attached to every payment so the booking can be rebuilt from the provider side.
const (
	MetaPackageID   = "package_id"
	MetaSpaceID     = "space_id"
	MetaEmployerID  = "employer_id"
	MetaEmployeeID  = "employee_id"
	MetaFrequency   = "frequency"
	MetaType        = "booking_type"
	MetaHoursPerDay = "hours_per_day"
	MetaStartDate   = "start_date"
	MetaEndDate     = "end_date"
	MetaDates       = "selected_dates"
	MetaWeekdays    = "selected_weekdays"
	MetaBillingRule = "billing_rule"
)

type Customer struct {
	EmployerID string
	Email      string
	Name       string
}

type BillingAddress struct {
	Line1      string `json:"line1"       validate:"required,max=200"`
	Line2      string `json:"line2"       validate:"omitempty,max=200"`
	City       string `json:"city"        validate:"required,max=100"`
	State      string `json:"state"       validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country"     validate:"required,len=2"`
}

// CardDetails holds a client-side card token. Raw card numbers never reach the service.
type CardDetails struct {
	Token      string
	HolderName string
}

type PaymentMethodRef struct {
	ID         string
	CustomerID string
}

// PaymentIntentSpec is the provider-facing request built by the flow selector.
type PaymentIntentSpec struct {
	Kind               PaymentFlow
	AmountDueNow       gModel.Money
	RecurringAmount    gModel.Money
	Currency           string
	ProviderPackageRef string
	Customer           Customer
	FirstBillingDate   time.Time
	Metadata           map[string]string
	IdempotencyKey     string
}

type PaymentResult struct {
	ID              string       `json:"id"`
	InitialChargeID string       `json:"initial_charge_id,omitempty"`
	Status          string       `json:"status"`
	Kind            PaymentFlow  `json:"kind"`
	AmountCharged   gModel.Money `json:"amount_charged_cents"`
}
