// Package evaluation scores a classifier against the labelled Heart Failure
// Prediction dataset.
package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/yungbote/heartcheck/internal/patient"
)

// Columns of the published heart.csv, in file order.
const (
	colAge            = "Age"
	colSex            = "Sex"
	colChestPainType  = "ChestPainType"
	colRestingBP      = "RestingBP"
	colCholesterol    = "Cholesterol"
	colFastingBS      = "FastingBS"
	colRestingECG     = "RestingECG"
	colMaxHR          = "MaxHR"
	colExerciseAngina = "ExerciseAngina"
	colOldpeak        = "Oldpeak"
	colSTSlope        = "ST_Slope"
	colHeartDisease   = "HeartDisease"
)

var requiredColumns = []string{
	colAge, colSex, colChestPainType, colRestingBP, colCholesterol, colFastingBS,
	colRestingECG, colMaxHR, colExerciseAngina, colOldpeak, colSTSlope, colHeartDisease,
}

// maxRowErrors bounds how many bad rows are reported before giving up.
const maxRowErrors = 20

// Sample is one labelled row.
type Sample struct {
	Line   int
	Record patient.Record
	Label  int
}

type RowError struct {
	Line   int
	Column string
	Value  string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q", e.Line, e.Column, e.Value)
}

// ReadDataset parses heart.csv. Columns are matched by header name so their
// order does not matter. FastingBS is already binarized in the dataset.
func ReadDataset(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset header is missing %s", strings.Join(missing, ", "))
	}

	var (
		samples []Sample
		errs    error
		nerrs   int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		s, err := parseRow(line, row, idx)
		if err != nil {
			errs = multierr.Append(errs, err)
			if nerrs++; nerrs >= maxRowErrors {
				break
			}
			continue
		}
		samples = append(samples, s)
	}
	if errs != nil {
		return nil, errs
	}
	if len(samples) == 0 {
		return nil, errors.New("dataset has no rows")
	}
	return samples, nil
}

func parseRow(line int, row []string, idx map[string]int) (Sample, error) {
	s := Sample{Line: line}
	var errs error

	get := func(col string) string { return strings.TrimSpace(row[idx[col]]) }
	bad := func(col string) { errs = multierr.Append(errs, &RowError{Line: line, Column: col, Value: get(col)}) }
	intCol := func(col string, dst *int) {
		n, err := strconv.Atoi(get(col))
		if err != nil {
			bad(col)
			return
		}
		*dst = n
	}
	enumCol := func(col string, parse func(string) bool) {
		if !parse(get(col)) {
			bad(col)
		}
	}
	flag := func(col string) bool {
		switch get(col) {
		case "0":
			return false
		case "1":
			return true
		}
		bad(col)
		return false
	}

	rec := &s.Record
	intCol(colAge, &rec.Age)
	intCol(colRestingBP, &rec.RestingBP)
	intCol(colCholesterol, &rec.Cholesterol)
	intCol(colMaxHR, &rec.MaxHR)
	rec.FastingBS = flag(colFastingBS)
	if f, err := strconv.ParseFloat(get(colOldpeak), 64); err != nil {
		bad(colOldpeak)
	} else {
		rec.Oldpeak = f
	}

	enumCol(colSex, func(v string) (ok bool) { rec.Sex, ok = patient.ParseSex(v); return })
	enumCol(colChestPainType, func(v string) (ok bool) { rec.ChestPainType, ok = patient.ParseChestPainType(v); return })
	enumCol(colRestingECG, func(v string) (ok bool) { rec.RestingECG, ok = patient.ParseRestingECG(v); return })
	enumCol(colExerciseAngina, func(v string) (ok bool) { rec.ExerciseAngina, ok = patient.ParseExerciseAngina(v); return })
	enumCol(colSTSlope, func(v string) (ok bool) { rec.STSlope, ok = patient.ParseSTSlope(v); return })

	if flag(colHeartDisease) {
		s.Label = 1
	}
	return s, errs
}
