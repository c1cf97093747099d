package patient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FastingBSThreshold is the fasting blood sugar reading (mg/dL) above which
// FastingBS is set.
const FastingBSThreshold = 120

// Field keys shared by the form, the JSON API and validation errors.
const (
	FieldAge            = "age"
	FieldSex            = "sex"
	FieldChestPainType  = "chest_pain_type"
	FieldRestingBP      = "resting_bp"
	FieldCholesterol    = "cholesterol"
	FieldFastingBS      = "fasting_bs"
	FieldRestingECG     = "resting_ecg"
	FieldMaxHR          = "max_hr"
	FieldExerciseAngina = "exercise_angina"
	FieldOldpeak        = "oldpeak"
	FieldSTSlope        = "st_slope"
)

// RawFields is one form submission exactly as the user entered it. Numeric
// fields are free text; enum fields carry the selected option value, or ""
// for the placeholder.
type RawFields struct {
	Age            string `json:"age" form:"age"`
	Sex            string `json:"sex" form:"sex"`
	ChestPainType  string `json:"chest_pain_type" form:"chest_pain_type"`
	RestingBP      string `json:"resting_bp" form:"resting_bp"`
	Cholesterol    string `json:"cholesterol" form:"cholesterol"`
	FastingBS      string `json:"fasting_bs" form:"fasting_bs"`
	RestingECG     string `json:"resting_ecg" form:"resting_ecg"`
	MaxHR          string `json:"max_hr" form:"max_hr"`
	ExerciseAngina string `json:"exercise_angina" form:"exercise_angina"`
	Oldpeak        string `json:"oldpeak" form:"oldpeak"`
	STSlope        string `json:"st_slope" form:"st_slope"`
}

// UnmarshalJSON accepts each field as a JSON string or number. Numbers keep
// their literal text so validation sees what the client sent; null is the
// same as an absent field.
func (r *RawFields) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out RawFields
	for key, dst := range out.byKey() {
		v, ok := m[key]
		if !ok {
			continue
		}
		s, err := scalarText(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		*dst = s
	}
	*r = out
	return nil
}

func (r *RawFields) byKey() map[string]*string {
	return map[string]*string{
		FieldAge:            &r.Age,
		FieldSex:            &r.Sex,
		FieldChestPainType:  &r.ChestPainType,
		FieldRestingBP:      &r.RestingBP,
		FieldCholesterol:    &r.Cholesterol,
		FieldFastingBS:      &r.FastingBS,
		FieldRestingECG:     &r.RestingECG,
		FieldMaxHR:          &r.MaxHR,
		FieldExerciseAngina: &r.ExerciseAngina,
		FieldOldpeak:        &r.Oldpeak,
		FieldSTSlope:        &r.STSlope,
	}
}

var errNotScalar = errors.New("must be a string or a number")

func scalarText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch c := v[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errNotScalar
	}
}

// Record is a validated patient. It lives for one prediction request.
type Record struct {
	Age            int
	Sex            Sex
	ChestPainType  ChestPainType
	RestingBP      int
	Cholesterol    int
	FastingBS      bool
	RestingECG     RestingECG
	MaxHR          int
	ExerciseAngina ExerciseAngina
	Oldpeak        float64
	STSlope        STSlope
}

// FastingBSFromReading binarizes a fasting blood sugar reading in mg/dL.
func FastingBSFromReading(mgdl int) bool {
	return mgdl > FastingBSThreshold
}
