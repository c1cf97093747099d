package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/heartcheck/internal/config"
	"github.com/yungbote/heartcheck/internal/patient"
)

func mockEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(config.PathEnv, "")
	t.Setenv("MODEL_KIND", "mock")
	t.Setenv("MODEL_MOCK_LABEL", "1")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	predictRaw = patient.RawFields{}
	predictJSON = false
	configPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	mockEnv(t)

	out, err := execute(t, "predict",
		"--age", "54", "--sex", "Male", "--chest-pain-type", "ASY",
		"--resting-bp", "130", "--cholesterol", "246", "--fasting-bs", "150",
		"--resting-ecg", "Normal", "--max-hr", "150", "--exercise-angina", "Yes",
		"--oldpeak", "1.5", "--st-slope", "Flat",
	)
	require.NoError(t, err)
	assert.Equal(t, "Patient has heart disease.\n", out)
}

func TestPredictCommandReportsValidation(t *testing.T) {
	mockEnv(t)

	_, err := execute(t, "predict", "--age", "54")
	require.Error(t, err)
	assert.Contains(t, err.Error(), patient.MessageMissingFields)
	assert.Contains(t, err.Error(), patient.MessageMissingSelections)
}

func TestEvaluateCommand(t *testing.T) {
	mockEnv(t)
	csv := "Age,Sex,ChestPainType,RestingBP,Cholesterol,FastingBS,RestingECG,MaxHR,ExerciseAngina,Oldpeak,ST_Slope,HeartDisease\n" +
		"40,M,ATA,140,289,0,Normal,172,N,0,Up,0\n" +
		"49,F,NAP,160,180,0,Normal,156,N,1,Flat,1\n"
	path := filepath.Join(t.TempDir(), "heart.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := execute(t, "evaluate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "samples=2 accuracy=50.00%")
}

func TestConfigCommandUsesFlag(t *testing.T) {
	mockEnv(t)
	path := filepath.Join(t.TempDir(), "hc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":9191\"\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--config", path})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "9191")
	assert.Contains(t, out.String(), "kind: mock")
}
