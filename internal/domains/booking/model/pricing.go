package model

import (
	"time"

	gModel "cowork/shared/model"
)

// ProratedBilling is the first and following cycle of a recurring per-day booking.
type ProratedBilling struct {
	FirstCycleAmount          gModel.Money `json:"first_cycle_amount_cents"`
	NextCycleAmount           gModel.Money `json:"next_cycle_amount_cents"`
	NextBillingDate           time.Time    `json:"next_billing_date"`
	RemainingDaysInFirstCycle int          `json:"remaining_days_in_first_cycle"`
	NextCycleDays             int          `json:"next_cycle_days"`
}

// Pricing is everything the payment flow needs to know about cost.
type Pricing struct {
	Total    gModel.Money
	Prorated *ProratedBilling
}

// DueNow is the amount charged at submission time.
func (p Pricing) DueNow() gModel.Money {
	if p.Prorated != nil {
		return p.Prorated.FirstCycleAmount
	}

	return p.Total
}
