// Command heartcheck serves the heart disease prediction form and API, and
// offers one-shot prediction and dataset evaluation from the shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/heartcheck/internal/app"
	"github.com/yungbote/heartcheck/internal/config"
	"github.com/yungbote/heartcheck/internal/platform/shutdown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "heartcheck",
	Short:         "Heart disease prediction service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv(config.PathEnv, configPath)
		}
		return nil
	},
	// Serving is the default action.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: $"+config.PathEnv+" or "+config.DefaultPath+")")
	rootCmd.Version = app.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartcheck: %v\n", err)
		os.Exit(1)
	}
}

// newApp loads the config and wires the application, model included.
func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
