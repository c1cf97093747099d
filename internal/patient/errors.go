package patient

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrMissingField     = errors.New("missing required field")
	ErrMissingSelection = errors.New("missing dropdown selection")
	ErrInvalidField     = errors.New("invalid numeric field")
	ErrInvalidSelection = errors.New("invalid dropdown selection")
)

// User-facing messages for the two missing-input families.
const (
	MessageMissingFields     = "Please fill in all required fields."
	MessageMissingSelections = "Please fill in all dropdown selections."
)

// MissingFieldError lists the numeric fields that were left empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// MissingSelectionError lists the dropdowns left at the placeholder.
type MissingSelectionError struct {
	Fields []string
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("missing dropdown selections: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingSelectionError) Unwrap() error { return ErrMissingSelection }

// InvalidFieldError is a numeric field that is present but not usable.
type InvalidFieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("field %s: %q %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidField }

// InvalidSelectionError is an enum value that matches none of the options.
type InvalidSelectionError struct {
	Field string
	Value string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("field %s: unknown option %q", e.Field, e.Value)
}

func (e *InvalidSelectionError) Unwrap() error { return ErrInvalidSelection }

// IsValidationError reports whether err came out of Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrMissingSelection) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrInvalidSelection)
}

// Messages renders a validation error as the lines shown to the user, in
// reporting order: missing fields, invalid fields, missing selections,
// invalid selections.
func Messages(err error) []string {
	var out []string
	for _, e := range multierr.Errors(err) {
		var (
			missingField     *MissingFieldError
			missingSelection *MissingSelectionError
			invalidField     *InvalidFieldError
			invalidSelection *InvalidSelectionError
		)
		switch {
		case errors.As(e, &missingField):
			out = append(out, MessageMissingFields)
		case errors.As(e, &missingSelection):
			out = append(out, MessageMissingSelections)
		case errors.As(e, &invalidField):
			out = append(out, fmt.Sprintf("%s %s.", fieldLabels[invalidField.Field], invalidField.Reason))
		case errors.As(e, &invalidSelection):
			out = append(out, fmt.Sprintf("%s has no option %q.", fieldLabels[invalidSelection.Field], invalidSelection.Value))
		default:
			out = append(out, e.Error())
		}
	}
	return out
}

// FieldErrors maps each offending field key to a short reason.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	for _, e := range multierr.Errors(err) {
		var (
			missingField     *MissingFieldError
			missingSelection *MissingSelectionError
			invalidField     *InvalidFieldError
			invalidSelection *InvalidSelectionError
		)
		switch {
		case errors.As(e, &missingField):
			for _, f := range missingField.Fields {
				out[f] = "required"
			}
		case errors.As(e, &missingSelection):
			for _, f := range missingSelection.Fields {
				out[f] = "selection required"
			}
		case errors.As(e, &invalidField):
			out[invalidField.Field] = invalidField.Reason
		case errors.As(e, &invalidSelection):
			out[invalidSelection.Field] = "unknown option"
		}
	}
	return out
}

var fieldLabels = map[string]string{
	FieldAge:            "Age",
	FieldSex:            "Sex",
	FieldChestPainType:  "Chest Pain Type",
	FieldRestingBP:      "Resting Blood Pressure",
	FieldCholesterol:    "Serum Cholesterol",
	FieldFastingBS:      "Fasting Blood Sugar",
	FieldRestingECG:     "Resting ECG Results",
	FieldMaxHR:          "Maximum Heart Rate Achieved",
	FieldExerciseAngina: "Exercise-induced Angina",
	FieldOldpeak:        "ST Depression (Oldpeak)",
	FieldSTSlope:        "ST Slope",
}

// FieldLabel is the human-readable name of a field key.
func FieldLabel(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return key
}
