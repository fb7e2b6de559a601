package validator

import (
	"errors"
	"strings"
	"unicode"

	val "github.com/go-playground/validator/v10"
)

var templates = map[string]string{
	"required":     "%field% is required",
	"required_if":  "%field% is required when %param%",
	"email":        "%field% must be a valid email address",
	"len":          "%field% must be exactly %param% characters long",
	"max":          "%field% must be at most %param%",
	"min":          "%field% must be at least %param%",
	"oneof":        "%field% must be one of [%param%]",
	"calendardate": "%field% must be a date formatted as YYYY-MM-DD",
	"currency":     "%field% must be a lowercase ISO 4217 currency code",
}

// describe renders every field failure, joined in declaration order.
func describe(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	lines := make([]string, 0, len(fieldErrors))

	for _, fieldErr := range fieldErrors {
		field := fieldPath(fieldErr.Namespace())

		template, ok := templates[fieldErr.Tag()]
		if !ok {
			lines = append(lines, field+" failed "+fieldErr.Tag())

			continue
		}

		lines = append(lines, strings.NewReplacer("%field%", field, "%param%", fieldErr.Param()).Replace(template))
	}

	return strings.Join(lines, "; ")
}

// fieldPath turns a namespace such as "SubmitRequest.ConfigurationRequest.dates[2]" into the
// JSON path "dates[2]". Go identifiers (root and embedded structs) are exported, JSON names are not.
func fieldPath(namespace string) string {
	segments := []string{}

	for _, segment := range strings.Split(namespace, ".") {
		if segment == "" || unicode.IsUpper([]rune(segment)[0]) {
			continue
		}

		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		return "value"
	}

	return strings.Join(segments, ".")
}
