package patient

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Validate checks a submission and converts it into a Record.
//
// Both rule families are checked in full before returning. The numeric
// family (missing, then unparseable) is reported before the dropdown family
// (missing, then unknown), so a caller rendering the errors in order shows
// "required fields" ahead of "dropdown selections".
func Validate(raw RawFields) (Record, error) {
	var (
		rec              Record
		errs             error
		missingFields    []string
		invalidFields    error
		missingSelection []string
		invalidSelection error
	)

	num := func(key, value string, parse func(string) error) {
		value = strings.TrimSpace(value)
		if value == "" {
			missingFields = append(missingFields, key)
			return
		}
		if err := parse(value); err != nil {
			invalidFields = multierr.Append(invalidFields, err)
		}
	}
	intField := func(key string, dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return &InvalidFieldError{Field: key, Value: v, Reason: "must be a whole number"}
			}
			*dst = n
			return nil
		}
	}

	num(FieldAge, raw.Age, func(v string) error {
		if err := intField(FieldAge, &rec.Age)(v); err != nil {
			return err
		}
		if rec.Age <= 0 {
			return &InvalidFieldError{Field: FieldAge, Value: v, Reason: "must be positive"}
		}
		return nil
	})
	num(FieldRestingBP, raw.RestingBP, intField(FieldRestingBP, &rec.RestingBP))
	num(FieldCholesterol, raw.Cholesterol, intField(FieldCholesterol, &rec.Cholesterol))
	num(FieldFastingBS, raw.FastingBS, func(v string) error {
		var reading int
		if err := intField(FieldFastingBS, &reading)(v); err != nil {
			return err
		}
		rec.FastingBS = FastingBSFromReading(reading)
		return nil
	})
	num(FieldMaxHR, raw.MaxHR, intField(FieldMaxHR, &rec.MaxHR))
	num(FieldOldpeak, raw.Oldpeak, func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return &InvalidFieldError{Field: FieldOldpeak, Value: v, Reason: "must be a number"}
		}
		rec.Oldpeak = f
		return nil
	})

	sel := func(key, value string, parse func(string) bool) {
		value = strings.TrimSpace(value)
		if value == "" {
			missingSelection = append(missingSelection, key)
			return
		}
		if !parse(value) {
			invalidSelection = multierr.Append(invalidSelection, &InvalidSelectionError{Field: key, Value: value})
		}
	}

	sel(FieldSex, raw.Sex, func(v string) (ok bool) {
		rec.Sex, ok = ParseSex(v)
		return ok
	})
	sel(FieldChestPainType, raw.ChestPainType, func(v string) (ok bool) {
		rec.ChestPainType, ok = ParseChestPainType(v)
		return ok
	})
	sel(FieldRestingECG, raw.RestingECG, func(v string) (ok bool) {
		rec.RestingECG, ok = ParseRestingECG(v)
		return ok
	})
	sel(FieldExerciseAngina, raw.ExerciseAngina, func(v string) (ok bool) {
		rec.ExerciseAngina, ok = ParseExerciseAngina(v)
		return ok
	})
	sel(FieldSTSlope, raw.STSlope, func(v string) (ok bool) {
		rec.STSlope, ok = ParseSTSlope(v)
		return ok
	})

	if len(missingFields) > 0 {
		errs = multierr.Append(errs, &MissingFieldError{Fields: missingFields})
	}
	errs = multierr.Append(errs, invalidFields)
	if len(missingSelection) > 0 {
		errs = multierr.Append(errs, &MissingSelectionError{Fields: missingSelection})
	}
	errs = multierr.Append(errs, invalidSelection)

	if errs != nil {
		return Record{}, errs
	}
	return rec, nil
}
