package patient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawFields_UnmarshalAcceptsNumbers(t *testing.T) {
	body := `{"age":54,"sex":"Male","chest_pain_type":"ASY","resting_bp":130,"cholesterol":"246",
		"fasting_bs":150,"resting_ecg":"Normal","max_hr":150,"exercise_angina":"Yes","oldpeak":1.5,"st_slope":"Flat"}`

	var raw RawFields
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	assert.Equal(t, validRaw(), raw)

	_, err := Validate(raw)
	assert.NoError(t, err)
}

func TestRawFields_UnmarshalNullIsMissing(t *testing.T) {
	var raw RawFields
	require.NoError(t, json.Unmarshal([]byte(`{"age":null,"sex":"Male","unknown":true}`), &raw))
	assert.Empty(t, raw.Age)
	assert.Equal(t, "Male", raw.Sex)

	_, err := Validate(raw)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestRawFields_UnmarshalRejectsOtherTypes(t *testing.T) {
	for _, body := range []string{`{"age":true}`, `{"oldpeak":[1]}`, `{"sex":{"v":"Male"}}`} {
		var raw RawFields
		err := json.Unmarshal([]byte(body), &raw)
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), "must be a string or a number")
	}
}
