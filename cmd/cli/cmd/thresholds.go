// Package cmd - thresholds command
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"bookmark-engagement/core/output"
	"bookmark-engagement/internal/errors"
)

var thresholdsJSON bool

// thresholdsCmd prints the active thresholds and weights
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show the active thresholds, weights and level names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return errors.Wrap(errors.TypeConfig, "failed to build engine", err)
		}

		info := engine.ThresholdsInfo()
		if thresholdsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		return output.RenderThresholds(cmd.OutOrStdout(), info)
	},
}

func init() {
	thresholdsCmd.Flags().BoolVar(&thresholdsJSON, "json", false, "print as JSON")
}
