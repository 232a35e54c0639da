package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/churn"
	"github.com/evolens/evolens/pkg/report"
)

var churnCmd = &cobra.Command{
	Use:   "churn [path]",
	Short: "Analyze change volume per file",
	RunE:  runChurn,
}

func init() {
	churnCmd.Flags().Int("min-revisions", 0, "Only report files with at least this many revisions")

	analyzeCmd.AddCommand(churnCmd)
}

func runChurn(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.ChurnColumns); err != nil {
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

	var opts []churn.Option
	if n, _ := cmd.Flags().GetInt("min-revisions"); n > 0 {
		opts = append(opts, churn.WithMinRevisions(n))
	}

	result, err := churn.New(opts...).Analyze(cmd.Context(), m)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("File Churn (%d files, %d commits)",
		result.Summary.TotalEntities, result.Summary.TotalRevisions)
	return renderTable(cmd, title, report.FromChurn(result), result)
}
