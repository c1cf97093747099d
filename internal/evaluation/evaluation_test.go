package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/mock"
	"github.com/yungbote/heartcheck/internal/patient"
	"github.com/yungbote/heartcheck/internal/prediction"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const heartCSV = `Age,Sex,ChestPainType,RestingBP,Cholesterol,FastingBS,RestingECG,MaxHR,ExerciseAngina,Oldpeak,ST_Slope,HeartDisease
40,M,ATA,140,289,0,Normal,172,N,0,Up,0
49,F,NAP,160,180,0,Normal,156,N,1,Flat,1
37,M,ATA,130,283,0,ST,98,N,0,Up,0
48,F,ASY,138,214,0,Normal,108,Y,1.5,Flat,1
54,M,NAP,150,195,1,Normal,122,N,0,Up,0
`

func TestReadDataset(t *testing.T) {
	samples, err := ReadDataset(strings.NewReader(heartCSV))
	require.NoError(t, err)
	require.Len(t, samples, 5)

	assert.Equal(t, patient.Record{
		Age:            48,
		Sex:            patient.SexFemale,
		ChestPainType:  patient.ChestPainASY,
		RestingBP:      138,
		Cholesterol:    214,
		RestingECG:     patient.RestingECGNormal,
		MaxHR:          108,
		ExerciseAngina: patient.AnginaYes,
		Oldpeak:        1.5,
		STSlope:        patient.STSlopeFlat,
	}, samples[3].Record)
	assert.Equal(t, 1, samples[3].Label)
	assert.Equal(t, 5, samples[3].Line)
	// FastingBS is a 0/1 flag in the dataset, not a reading.
	assert.True(t, samples[4].Record.FastingBS)
}

func TestReadDataset_Errors(t *testing.T) {
	_, err := ReadDataset(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadDataset(strings.NewReader("Age,Sex\n40,M\n"))
	assert.ErrorContains(t, err, "ST_Slope")

	bad := strings.Replace(heartCSV, "40,M,ATA", "forty,X,ATA", 1)
	_, err = ReadDataset(strings.NewReader(bad))
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var rowErr *RowError
	require.ErrorAs(t, errs[0], &rowErr)
	assert.Equal(t, 2, rowErr.Line)
	assert.Equal(t, "Age", rowErr.Column)
}

// slopePredictor predicts disease unless the ST slope is up.
type slopePredictor struct{}

func (slopePredictor) PredictRecord(_ context.Context, rec patient.Record) (prediction.Result, error) {
	if rec.STSlope == patient.STSlopeUp {
		return prediction.Result{Label: 0}, nil
	}
	return prediction.Result{Label: 1}, nil
}

func TestEvaluate(t *testing.T) {
	samples, err := ReadDataset(strings.NewReader(heartCSV))
	require.NoError(t, err)

	r, err := Evaluate(context.Background(), slopePredictor{}, samples, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 5, TruePositives: 2, TrueNegatives: 3}, r)
	assert.Equal(t, 1.0, r.Accuracy())
	assert.Contains(t, r.String(), "accuracy=100.00%")
}

type staticLoader struct{ clf model.Classifier }

func (l staticLoader) Load(context.Context) (model.Classifier, error) { return l.clf, nil }

func TestEvaluate_ConfusionWithService(t *testing.T) {
	samples, err := ReadDataset(strings.NewReader(heartCSV))
	require.NoError(t, err)

	svc, err := prediction.NewService(staticLoader{clf: mock.New(1)}, nil)
	require.NoError(t, err)

	r, err := Evaluate(context.Background(), svc, samples, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.TruePositives)
	assert.Equal(t, 3, r.FalsePositives)
	assert.InDelta(t, 0.4, r.Accuracy(), 1e-9)
	assert.InDelta(t, 0.4, r.Precision(), 1e-9)
	assert.Equal(t, 1.0, r.Recall())
}

func TestEvaluate_StopsOnError(t *testing.T) {
	samples, err := ReadDataset(strings.NewReader(heartCSV))
	require.NoError(t, err)

	boom := errors.New("boom")
	svc, err := prediction.NewService(staticLoader{clf: &mock.Classifier{Err: boom}}, nil)
	require.NoError(t, err)

	_, err = Evaluate(context.Background(), svc, samples, Options{Workers: 1})
	assert.ErrorIs(t, err, boom)
}
