package payment

import (
	"strconv"
	"strings"

	"cowork/internal/domains/booking/model"
	rcModel "cowork/internal/domains/ratecard/model"
	"cowork/shared/constant"
)

const (
	billingRuleWeekdayCount = "weekday_count_per_month"
	billingRuleFixedMonthly = "fixed_monthly"
)

// Request is everything the selector needs to build a provider request.
type Request struct {
	Config         model.Configuration
	Pricing        model.Pricing
	Package        rcModel.Package
	Customer       model.Customer
	Currency       string
	IdempotencyKey string
}

// Select maps the frequency and type to a payment flow and builds the provider request.
// A booking with nothing to charge now or later gets FlowNone.
func Select(req Request) (model.PaymentIntentSpec, error) {
	cfg := req.Config

	spec := model.PaymentIntentSpec{
		Currency:           req.Currency,
		ProviderPackageRef: req.Package.ProviderRef,
		Customer:           req.Customer,
		IdempotencyKey:     req.IdempotencyKey,
	}

	switch {
	case cfg.Frequency == model.FrequencyOngoing && cfg.Type == model.TypeMonthly:
		spec.Kind = model.FlowRecurringSubscription
		spec.AmountDueNow = req.Package.RateCard().Monthly
		spec.RecurringAmount = spec.AmountDueNow
	case cfg.Frequency == model.FrequencyOngoing && cfg.Type == model.TypePerDay:
		if req.Pricing.Prorated == nil {
			return model.PaymentIntentSpec{}, model.ErrIncompleteSchedule
		}

		spec.Kind = model.FlowRecurringSubscription
		spec.AmountDueNow = req.Pricing.Prorated.FirstCycleAmount
		spec.RecurringAmount = req.Pricing.Prorated.NextCycleAmount
		spec.FirstBillingDate = req.Pricing.Prorated.NextBillingDate
	case cfg.Frequency == model.FrequencyOneTime && model.Supported(cfg.Frequency, cfg.Type):
		spec.Kind = model.FlowOneTimeCharge
		spec.AmountDueNow = req.Pricing.Total
	default:
		return model.PaymentIntentSpec{}, &model.UnsupportedCombinationError{Frequency: cfg.Frequency, Type: cfg.Type}
	}

	if spec.AmountDueNow == 0 && spec.RecurringAmount == 0 {
		spec.Kind = model.FlowNone
	}

	spec.Metadata = Metadata(cfg, req.Customer.EmployerID)

	return spec, nil
}

// Metadata describes the schedule well enough to rebuild the booking from the payment alone.
func Metadata(cfg model.Configuration, employerID string) map[string]string {
	meta := map[string]string{
		model.MetaPackageID:   cfg.PackageID,
		model.MetaSpaceID:     cfg.SpaceID,
		model.MetaEmployerID:  employerID,
		model.MetaEmployeeID:  cfg.EmployeeID,
		model.MetaFrequency:   string(cfg.Frequency),
		model.MetaType:        string(cfg.Type),
		model.MetaHoursPerDay: strconv.Itoa(int(cfg.HoursPerDay)),
		model.MetaStartDate:   cfg.StartDate.Format(constant.CalendarFormat),
	}

	if !cfg.IsOngoing() && !cfg.EndDate.IsZero() {
		meta[model.MetaEndDate] = cfg.EndDate.Format(constant.CalendarFormat)
	}

	if len(cfg.SelectedDates) > 0 {
		dates := make([]string, len(cfg.SelectedDates))
		for i, d := range cfg.SelectedDates {
			dates[i] = d.Format(constant.CalendarFormat)
		}

		meta[model.MetaDates] = strings.Join(dates, ",")
	}

	if !cfg.SelectedWeekdays.IsEmpty() {
		meta[model.MetaWeekdays] = strings.Join(cfg.SelectedWeekdays.Names(), ",")
	}

	switch {
	case cfg.IsOngoing() && cfg.Type == model.TypePerDay:
		meta[model.MetaBillingRule] = billingRuleWeekdayCount
	case cfg.IsOngoing():
		meta[model.MetaBillingRule] = billingRuleFixedMonthly
	}

	return meta
}
