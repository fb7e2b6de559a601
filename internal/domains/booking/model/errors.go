package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"cowork/shared/constant"
	gModel "cowork/shared/model"
)

var (
	ErrNoPackageSelected  = &PreconditionError{Reason: "no package selected"}
	ErrIncompleteSchedule = &PreconditionError{Reason: "schedule is incomplete"}
)

// ValidationError reports the first configuration field that failed a check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Kind() string {
	return "validation_failed"
}

func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Details() map[string]any {
	return map[string]any{"field": e.Field, "reason": e.Reason}
}

// InvalidStartDateError is returned by schedule generation for past, weekend or disabled dates.
type InvalidStartDateError struct {
	Date   time.Time
	Reason string
}

func (e *InvalidStartDateError) Error() string {
	return fmt.Sprintf("invalid date %s: %s", e.Date.Format(constant.CalendarFormat), e.Reason)
}

func (e *InvalidStartDateError) Kind() string {
	return "invalid_start_date"
}

func (e *InvalidStartDateError) StatusCode() int {
	return http.StatusBadRequest
}

func (e *InvalidStartDateError) Details() map[string]any {
	return map[string]any{"date": e.Date.Format(constant.CalendarFormat), "reason": e.Reason}
}

// PreconditionError means pricing was asked for before its inputs exist.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func (e *PreconditionError) Kind() string {
	return "precondition_failed"
}

func (e *PreconditionError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *PreconditionError) Details() map[string]any {
	return map[string]any{"reason": e.Reason}
}

// UnsupportedCombinationError signals a programming defect: the pair should never get this far.
type UnsupportedCombinationError struct {
	Frequency BookingFrequency
	Type      BookingType
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("unsupported booking combination %s x %s", e.Frequency, e.Type)
}

func (e *UnsupportedCombinationError) Kind() string {
	return "unsupported_combination"
}

func (e *UnsupportedCombinationError) StatusCode() int {
	return http.StatusInternalServerError
}

func (e *UnsupportedCombinationError) Details() map[string]any {
	return map[string]any{"frequency": e.Frequency, "type": e.Type}
}

// PaymentMethodError means the card could not be tokenized. Nothing was charged.
type PaymentMethodError struct {
	Reason string
	Err    error
}

func (e *PaymentMethodError) Error() string {
	return "payment method rejected: " + e.Reason
}

func (e *PaymentMethodError) Unwrap() error {
	return e.Err
}

func (e *PaymentMethodError) Kind() string {
	return "payment_method_rejected"
}

func (e *PaymentMethodError) StatusCode() int {
	return http.StatusPaymentRequired
}

func (e *PaymentMethodError) Details() map[string]any {
	return map[string]any{"reason": e.Reason}
}

// PaymentExecutionError means the charge or subscription failed after tokenization. Nothing was charged.
type PaymentExecutionError struct {
	Flow   PaymentFlow
	Amount gModel.Money
	Reason string
	Err    error
}

func (e *PaymentExecutionError) Error() string {
	return fmt.Sprintf("payment failed (%s): %s", e.Flow, e.Reason)
}

func (e *PaymentExecutionError) Unwrap() error {
	return e.Err
}

func (e *PaymentExecutionError) Kind() string {
	return "payment_failed"
}

func (e *PaymentExecutionError) StatusCode() int {
	return http.StatusPaymentRequired
}

func (e *PaymentExecutionError) Details() map[string]any {
	return map[string]any{"flow": e.Flow, "amount_cents": e.Amount.Cents(), "reason": e.Reason}
}

// BookingConflictError is returned when the dates overlap an existing booking.
type BookingConflictError struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
}

func (e *BookingConflictError) Error() string {
	subject := "employer"
	if e.EmployeeID != "" {
		subject = "employee"
	}

	return subject + " already has a booking in that date range"
}

func (e *BookingConflictError) Kind() string {
	return "booking_conflict"
}

func (e *BookingConflictError) StatusCode() int {
	return http.StatusConflict
}

func (e *BookingConflictError) Details() map[string]any {
	details := map[string]any{
		"start_date": e.StartDate.Format(constant.CalendarFormat),
		"end_date":   e.EndDate.Format(constant.CalendarFormat),
	}

	if e.EmployeeID != "" {
		details["employee_id"] = e.EmployeeID
	}

	return details
}

// PostPaymentBookingFailure means the customer was charged but the booking was not recorded.
// It needs manual reconciliation and is never retried.
type PostPaymentBookingFailure struct {
	Payment        PaymentResult
	Amount         gModel.Money
	IdempotencyKey string
	Err            error
}

func (e *PostPaymentBookingFailure) Error() string {
	return fmt.Sprintf("payment %s succeeded but booking was not recorded: %v", e.Payment.ID, e.Err)
}

func (e *PostPaymentBookingFailure) Unwrap() error {
	return e.Err
}

func (e *PostPaymentBookingFailure) Kind() string {
	return "reconciliation_required"
}

func (e *PostPaymentBookingFailure) StatusCode() int {
	return http.StatusBadGateway
}

func (e *PostPaymentBookingFailure) Details() map[string]any {
	return map[string]any{
		"payment_id":      e.Payment.ID,
		"payment_kind":    e.Payment.Kind,
		"amount_cents":    e.Amount.Cents(),
		"idempotency_key": e.IdempotencyKey,
	}
}

// AttemptInProgressError is returned while another submission of the same configuration is running.
type AttemptInProgressError struct {
	Fingerprint string
}

func (e *AttemptInProgressError) Error() string {
	return "a booking attempt for this configuration is already in progress"
}

func (e *AttemptInProgressError) Kind() string {
	return "attempt_in_progress"
}

func (e *AttemptInProgressError) StatusCode() int {
	return http.StatusConflict
}

func (e *AttemptInProgressError) Details() map[string]any {
	return map[string]any{"fingerprint": e.Fingerprint}
}

func IsPostPaymentFailure(err error) bool {
	var target *PostPaymentBookingFailure

	return errors.As(err, &target)
}
