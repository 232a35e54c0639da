package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/ownership"
	"github.com/evolens/evolens/pkg/report"
)

var ownershipCmd = &cobra.Command{
	Use:   "ownership [path]",
	Short: "Analyze author contribution shares and knowledge fragmentation",
	RunE:  runOwnership,
}

func init() {
	ownershipCmd.Flags().Float64("minor-threshold", 0, "Contribution share (0-1) at which an author counts toward fragmentation (0 = use config)")

	analyzeCmd.AddCommand(ownershipCmd)
}

func runOwnership(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.OwnershipColumns); err != nil {
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

	threshold := svc.Config().Ownership.MinorThreshold
	if f, _ := cmd.Flags().GetFloat64("minor-threshold"); f > 0 {
		threshold = f
	}

	result, err := ownership.New(ownership.WithMinorThreshold(threshold)).Analyze(cmd.Context(), m)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Ownership (%d files, %d authors)",
		result.Summary.TotalEntities, result.Summary.TotalAuthors)
	return renderTable(cmd, title, report.FromOwnership(result), result)
}
