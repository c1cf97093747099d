package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/heartcheck/internal/patient"
)

var (
	predictRaw  patient.RawFields
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict heart disease for one patient",
	Example: `  heartcheck predict --age 54 --sex Male --chest-pain-type ASY --resting-bp 130 \
    --cholesterol 246 --fasting-bs 150 --resting-ecg Normal --max-hr 150 \
    --exercise-angina Yes --oldpeak 1.5 --st-slope Flat`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictRaw.Age, "age", "", "age in years")
	f.StringVar(&predictRaw.Sex, "sex", "", "Male or Female")
	f.StringVar(&predictRaw.ChestPainType, "chest-pain-type", "", "TA, ATA, NAP or ASY")
	f.StringVar(&predictRaw.RestingBP, "resting-bp", "", "resting blood pressure [mm Hg]")
	f.StringVar(&predictRaw.Cholesterol, "cholesterol", "", "serum cholesterol [mg/dL]")
	f.StringVar(&predictRaw.FastingBS, "fasting-bs", "", "fasting blood sugar [mg/dL]")
	f.StringVar(&predictRaw.RestingECG, "resting-ecg", "", "Normal, ST or LVH")
	f.StringVar(&predictRaw.MaxHR, "max-hr", "", "maximum heart rate achieved")
	f.StringVar(&predictRaw.ExerciseAngina, "exercise-angina", "", "Yes or No")
	f.StringVar(&predictRaw.Oldpeak, "oldpeak", "", "ST depression")
	f.StringVar(&predictRaw.STSlope, "st-slope", "", "Up, Flat or Down")
	f.BoolVar(&predictJSON, "json", false, "print the result as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Services.Prediction.Predict(cmd.Context(), predictRaw)
	if err != nil {
		if patient.IsValidationError(err) {
			return errors.New(strings.Join(patient.Messages(err), " "))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if predictJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprintln(out, res.Message)
	return err
}
