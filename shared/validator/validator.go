package validator

import (
	"cowork/shared/failure"
	"cowork/shared/timezone"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	validate = newValidate()

	currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)
)

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	// Report request fields under their JSON names, dropping the root struct from the namespace.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	custom := map[string]val.Func{
		"calendardate": isCalendarDate,
		"currency":     isCurrency,
	}

	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	return v
}

func isCalendarDate(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := timezone.ParseDate(str)

	return err == nil
}

func isCurrency(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)

	return ok && currencyPattern.MatchString(str)
}

// Validate decodes a JSON request body into data and validates it.
// Unknown fields are rejected.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(describe(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(describe(err)) //nolint:wrapcheck
	}

	return nil
}
