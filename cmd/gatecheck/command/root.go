// Package command holds the gatecheck CLI. It runs the worker-side location
// check against a running API, with the local engine as fallback.
//
//	gatecheck validate --checklist ID --lat 40.71 --lng -74.00 [--activity ID --photo REF]
//	gatecheck distance 40.7128 -74.0060 40.7138 -74.0060
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opsgate/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "gatecheck",
	Short:         "Check a position against a checklist geofence",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (default $OPSGATE_CONFIG)")
	rootCmd.AddCommand(newValidateCmd(), newDistanceCmd())
}

func loadConfig() (config.Config, error) {
	if cfgPath == "" {
		return config.Load()
	}
	return config.LoadFile(cfgPath)
}
