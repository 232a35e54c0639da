package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/age"
	"github.com/evolens/evolens/pkg/report"
)

var ageCmd = &cobra.Command{
	Use:   "age [path]",
	Short: "Analyze time since each file last changed",
	RunE:  runAge,
}

func init() {
	ageCmd.Flags().String("reference", "", "Reference time for age (RFC 3339 or YYYY-MM-DD, default: latest commit)")

	analyzeCmd.AddCommand(ageCmd)
}

func runAge(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.AgeColumns); err != nil {
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

	reference := svc.Config().ReferenceTime()
	if r, _ := cmd.Flags().GetString("reference"); r != "" {
		t, err := parseTimeFlag(r)
		if err != nil {
			return err
		}
		reference = t
	}

	result, err := age.New(age.WithReferenceTime(reference)).Analyze(cmd.Context(), m)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Code Age (as of %s)", result.ReferenceTime.Format("2006-01-02"))
	return renderTable(cmd, title, report.FromAge(result), result)
}
