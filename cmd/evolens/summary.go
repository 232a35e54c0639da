package main

import (
	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Show whole-history counts for the analyzed dataset",
	RunE:  runSummary,
}

func init() {
	analyzeCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.SummaryColumns); err != nil {
		return err
	}

	svc, err := buildService(cmd)
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, svc, args)
	if err != nil {
		return err
	}

	return renderTable(cmd, "History Summary", report.FromModel(m), nil)
}
