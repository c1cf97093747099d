// Package features turns a validated patient record into the fixed 20-column
// vector the heart disease classifier was trained on.
package features

import (
	"fmt"
	"strings"
)

// Column indexes a Vector. The order is the training schema order and must
// not change without retraining the model.
type Column int

const (
	Age Column = iota
	RestingBP
	Cholesterol
	FastingBS
	MaxHR
	Oldpeak
	SexF
	SexM
	ChestPainTypeASY
	ChestPainTypeATA
	ChestPainTypeNAP
	ChestPainTypeTA
	RestingECGLVH
	RestingECGNormal
	RestingECGST
	ExerciseAnginaN
	ExerciseAnginaY
	STSlopeDown
	STSlopeFlat
	STSlopeUp

	NumColumns
)

var columnNames = [...]string{
	Age:              "Age",
	RestingBP:        "RestingBP",
	Cholesterol:      "Cholesterol",
	FastingBS:        "FastingBS",
	MaxHR:            "MaxHR",
	Oldpeak:          "Oldpeak",
	SexF:             "Sex_F",
	SexM:             "Sex_M",
	ChestPainTypeASY: "ChestPainType_ASY",
	ChestPainTypeATA: "ChestPainType_ATA",
	ChestPainTypeNAP: "ChestPainType_NAP",
	ChestPainTypeTA:  "ChestPainType_TA",
	RestingECGLVH:    "RestingECG_LVH",
	RestingECGNormal: "RestingECG_Normal",
	RestingECGST:     "RestingECG_ST",
	ExerciseAnginaN:  "ExerciseAngina_N",
	ExerciseAnginaY:  "ExerciseAngina_Y",
	STSlopeDown:      "ST_Slope_Down",
	STSlopeFlat:      "ST_Slope_Flat",
	STSlopeUp:        "ST_Slope_Up",
}

var _ = [1]struct{}{}[int(NumColumns)-len(columnNames)]

func (c Column) String() string {
	if c < 0 || c >= NumColumns {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// Names returns the column names in schema order.
func Names() []string {
	out := make([]string, NumColumns)
	copy(out, columnNames[:])
	return out
}

// ColumnByName resolves a training column name.
func ColumnByName(name string) (Column, bool) {
	for i, n := range columnNames {
		if n == name {
			return Column(i), true
		}
	}
	return 0, false
}

// Groups lists the one-hot column groups derived from each categorical field.
var Groups = map[string][]Column{
	"Sex":            {SexF, SexM},
	"ChestPainType":  {ChestPainTypeASY, ChestPainTypeATA, ChestPainTypeNAP, ChestPainTypeTA},
	"RestingECG":     {RestingECGLVH, RestingECGNormal, RestingECGST},
	"ExerciseAngina": {ExerciseAnginaN, ExerciseAnginaY},
	"ST_Slope":       {STSlopeDown, STSlopeFlat, STSlopeUp},
}

// SchemaMismatchError describes how a model's feature names differ from the
// encoder schema.
type SchemaMismatchError struct {
	Got []string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Got) != int(NumColumns) {
		return fmt.Sprintf("feature schema mismatch: model has %d columns, encoder emits %d", len(e.Got), NumColumns)
	}
	var diffs []string
	for i, name := range e.Got {
		if name != columnNames[i] {
			diffs = append(diffs, fmt.Sprintf("[%d] model=%q encoder=%q", i, name, columnNames[i]))
		}
	}
	return "feature schema mismatch: " + strings.Join(diffs, ", ")
}

// CheckNames verifies that names matches the schema exactly, in order.
// An empty list is accepted: some artifacts do not record feature names.
func CheckNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != int(NumColumns) {
		return &SchemaMismatchError{Got: names}
	}
	for i, name := range names {
		if name != columnNames[i] {
			return &SchemaMismatchError{Got: names}
		}
	}
	return nil
}
