package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/heartcheck/internal/evaluation"
)

var (
	evaluateWorkers int
	evaluateJSON    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <heart.csv>",
	Short: "Score the loaded model against the labelled Heart Failure dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().IntVar(&evaluateWorkers, "workers", 0, "concurrent predictions (default GOMAXPROCS)")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "print the report as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	samples, err := evaluation.ReadDataset(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := evaluation.Evaluate(cmd.Context(), a.Services.Prediction, samples, evaluation.Options{Workers: evaluateWorkers})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if evaluateJSON {
		return json.NewEncoder(out).Encode(struct {
			evaluation.Report
			Accuracy float64 `json:"accuracy"`
		}{report, report.Accuracy()})
	}
	_, err = fmt.Fprintln(out, report.String())
	return err
}
