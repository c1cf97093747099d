package features

import (
	"github.com/yungbote/heartcheck/internal/patient"
)

// Vector is one encoded patient, indexed by Column.
type Vector [NumColumns]float64

// Get returns the value of column c.
func (v Vector) Get(c Column) float64 { return v[c] }

// Slice returns the values in schema order.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumColumns)
	copy(out, v[:])
	return out
}

// NamedValue is one column of an encoded vector.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Named returns the vector as ordered name/value pairs.
func (v Vector) Named() []NamedValue {
	out := make([]NamedValue, NumColumns)
	for i := range v {
		out[i] = NamedValue{Name: columnNames[i], Value: v[i]}
	}
	return out
}

// One-hot tables, indexed by the patient enum.
var (
	sexColumns = [...]Column{
		patient.SexFemale: SexF,
		patient.SexMale:   SexM,
	}
	chestPainColumns = [...]Column{
		patient.ChestPainASY: ChestPainTypeASY,
		patient.ChestPainATA: ChestPainTypeATA,
		patient.ChestPainNAP: ChestPainTypeNAP,
		patient.ChestPainTA:  ChestPainTypeTA,
	}
	restingECGColumns = [...]Column{
		patient.RestingECGLVH:    RestingECGLVH,
		patient.RestingECGNormal: RestingECGNormal,
		patient.RestingECGST:     RestingECGST,
	}
	stSlopeColumns = [...]Column{
		patient.STSlopeDown: STSlopeDown,
		patient.STSlopeFlat: STSlopeFlat,
		patient.STSlopeUp:   STSlopeUp,
	}
)

// A category added to patient without a column here breaks the build.
var (
	_ = [1]struct{}{}[int(patient.NumSexes)-len(sexColumns)]
	_ = [1]struct{}{}[int(patient.NumChestPainTypes)-len(chestPainColumns)]
	_ = [1]struct{}{}[int(patient.NumRestingECGs)-len(restingECGColumns)]
	_ = [1]struct{}{}[int(patient.NumSTSlopes)-len(stSlopeColumns)]
	_ = [1]struct{}{}[int(patient.NumAnginas)-2]
)

// Encode maps a record onto the training schema. It has no side effects and
// the result depends only on rec.
func Encode(rec patient.Record) Vector {
	var v Vector

	v[Age] = float64(rec.Age)
	v[RestingBP] = float64(rec.RestingBP)
	v[Cholesterol] = float64(rec.Cholesterol)
	if rec.FastingBS {
		v[FastingBS] = 1
	}
	v[MaxHR] = float64(rec.MaxHR)
	v[Oldpeak] = rec.Oldpeak

	oneHot(&v, sexColumns[:], int(rec.Sex))
	oneHot(&v, chestPainColumns[:], int(rec.ChestPainType))
	oneHot(&v, restingECGColumns[:], int(rec.RestingECG))
	oneHot(&v, stSlopeColumns[:], int(rec.STSlope))

	// ExerciseAngina is encoded by complement, matching the training data.
	// With exactly two values (guarded above) it is still a one-hot.
	v[ExerciseAnginaN] = 1
	if rec.ExerciseAngina == patient.AnginaYes {
		v[ExerciseAnginaN] = 0
	}
	v[ExerciseAnginaY] = 1
	if rec.ExerciseAngina == patient.AnginaNo {
		v[ExerciseAnginaY] = 0
	}

	return v
}

func oneHot(v *Vector, table []Column, selected int) {
	for i, col := range table {
		if i == selected {
			v[col] = 1
		} else {
			v[col] = 0
		}
	}
}
