package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/trend"
	"github.com/evolens/evolens/pkg/report"
)

var trendCmd = &cobra.Command{
	Use:   "trend [path]",
	Short: "Show complexity evolution per file over time",
	Long: `Orders externally supplied complexity samples (--complexity with
timestamps) chronologically per file and reports the deltas. No
smoothing or curve fitting is applied.`,
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().Bool("untracked", false, "Include files that have samples but no history")

	analyzeCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.TrendColumns); err != nil {
		return err
	}

	scores, err := loadComplexity(cmd)
	if err != nil {
		return err
	}
	if scores == nil {
		return fmt.Errorf("trend analysis needs --complexity samples")
	}

	svc, err := buildService(cmd)
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, svc, args)
	if err != nil {
		return err
	}

	var opts []trend.Option
	if untracked, _ := cmd.Flags().GetBool("untracked"); untracked {
		opts = append(opts, trend.WithUntracked())
	}

	result, err := trend.New(opts...).Analyze(cmd.Context(), m, scores)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Complexity Trend (%d rising, %d falling)",
		result.Summary.Rising, result.Summary.Falling)
	return renderTable(cmd, title, report.FromTrend(result), result)
}
