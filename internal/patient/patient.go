// Package patient defines the clinical record collected by the prediction form
// and the rules that turn raw form values into a typed Record.
package patient

import (
	"fmt"
	"strings"
)

// Sex of the patient.
type Sex int

const (
	SexFemale Sex = iota
	SexMale
	NumSexes
)

// ChestPainType as recorded in the Heart Failure dataset.
//
//	TA: typical angina, ATA: atypical angina, NAP: non-anginal pain, ASY: asymptomatic
type ChestPainType int

const (
	ChestPainASY ChestPainType = iota
	ChestPainATA
	ChestPainNAP
	ChestPainTA
	NumChestPainTypes
)

// RestingECG result.
type RestingECG int

const (
	RestingECGLVH RestingECG = iota
	RestingECGNormal
	RestingECGST
	NumRestingECGs
)

// ExerciseAngina records exercise-induced angina.
type ExerciseAngina int

const (
	AnginaNo ExerciseAngina = iota
	AnginaYes
	NumAnginas
)

// STSlope is the slope of the peak exercise ST segment.
type STSlope int

const (
	STSlopeDown STSlope = iota
	STSlopeFlat
	STSlopeUp
	NumSTSlopes
)

// Option is one dropdown entry: the value submitted by the form and the
// label shown to the user.
type Option struct {
	Value string
	Label string
}

var (
	sexNames        = [...]string{SexFemale: "Female", SexMale: "Male"}
	chestPainNames  = [...]string{ChestPainASY: "ASY", ChestPainATA: "ATA", ChestPainNAP: "NAP", ChestPainTA: "TA"}
	restingECGNames = [...]string{RestingECGLVH: "LVH", RestingECGNormal: "Normal", RestingECGST: "ST"}
	anginaNames     = [...]string{AnginaNo: "No", AnginaYes: "Yes"}
	stSlopeNames    = [...]string{STSlopeDown: "Down", STSlopeFlat: "Flat", STSlopeUp: "Up"}
)

// Adding an enum value without naming it fails to compile here.
var (
	_ = [1]struct{}{}[int(NumSexes)-len(sexNames)]
	_ = [1]struct{}{}[int(NumChestPainTypes)-len(chestPainNames)]
	_ = [1]struct{}{}[int(NumRestingECGs)-len(restingECGNames)]
	_ = [1]struct{}{}[int(NumAnginas)-len(anginaNames)]
	_ = [1]struct{}{}[int(NumSTSlopes)-len(stSlopeNames)]
)

func (s Sex) String() string { return enumName(sexNames[:], int(s)) }
func (c ChestPainType) String() string { return enumName(chestPainNames[:], int(c)) }
func (r RestingECG) String() string { return enumName(restingECGNames[:], int(r)) }
func (a ExerciseAngina) String() string { return enumName(anginaNames[:], int(a)) }
func (s STSlope) String() string { return enumName(stSlopeNames[:], int(s)) }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return names[i]
}

// ParseSex accepts the form value ("Male", "Female") and the dataset codes ("M", "F").
func ParseSex(raw string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return SexMale, true
	case "female", "f":
		return SexFemale, true
	}
	return 0, false
}

func ParseChestPainType(raw string) (ChestPainType, bool) {
	i, ok := lookup(chestPainNames[:], raw)
	return ChestPainType(i), ok
}

func ParseRestingECG(raw string) (RestingECG, bool) {
	i, ok := lookup(restingECGNames[:], raw)
	return RestingECG(i), ok
}

// ParseExerciseAngina accepts "Yes"/"No" and the dataset codes "Y"/"N".
func ParseExerciseAngina(raw string) (ExerciseAngina, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y":
		return AnginaYes, true
	case "no", "n":
		return AnginaNo, true
	}
	return 0, false
}

func ParseSTSlope(raw string) (STSlope, bool) {
	i, ok := lookup(stSlopeNames[:], raw)
	return STSlope(i), ok
}

func lookup(names []string, raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	for i, name := range names {
		if strings.EqualFold(name, raw) {
			return i, true
		}
	}
	return 0, false
}

// Dropdown options in the order the form presents them.
var (
	SexOptions = []Option{{"Male", "Male"}, {"Female", "Female"}}

	ChestPainTypeOptions = []Option{
		{"TA", "TA: Typical Angina"},
		{"ATA", "ATA: Atypical Angina"},
		{"NAP", "NAP: Non-Anginal Pain"},
		{"ASY", "ASY: Asymptomatic"},
	}

	RestingECGOptions = []Option{
		{"Normal", "Normal"},
		{"ST", "ST: ST-T wave abnormality"},
		{"LVH", "LVH: Left Ventricular Hypertrophy"},
	}

	ExerciseAnginaOptions = []Option{{"Yes", "Yes"}, {"No", "No"}}

	STSlopeOptions = []Option{{"Up", "Up"}, {"Flat", "Flat"}, {"Down", "Down"}}
)
