package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/coupling"
	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/report"
)

var temporalCmd = &cobra.Command{
	Use:   "temporal [path]",
	Short: "Analyze temporal coupling across time windows",
	Long: `Finds pairs of files that change within the same time window even when
the changes land in different commits. Catches coupling that commit
discipline hides, like split commits by the same author or paired
changes across authors.`,
	RunE: runTemporal,
}

func init() {
	temporalCmd.Flags().String("window", "", "Bucket granularity: hour, day, week, month (default from config)")
	temporalCmd.Flags().Int("min-count", 0, "Minimum co-change count (0 = use config)")
	temporalCmd.Flags().Float64("min-percent", 0, "Minimum coupling percentage (0 = use config)")
	temporalCmd.Flags().Int("max-entities", 0, "Per-commit entity cutoff for pairing (0 = use config)")

	analyzeCmd.AddCommand(temporalCmd)
}

func runTemporal(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.CouplingColumns); err != nil {
		return err
	}

	svc, err := buildService(cmd)
	if err != nil {
		return err
	}
	applyCouplingFlags(cmd, svc.Config())

	window := config.Window(svc.Config().Coupling.Window)
	if w, _ := cmd.Flags().GetString("window"); w != "" {
		window = config.Window(w)
		if !window.Valid() {
			return fmt.Errorf("invalid window %q (want hour, day, week, or month)", w)
		}
	}

	m, err := loadModel(cmd, svc, args)
	if err != nil {
		return err
	}

	analyzer := coupling.New(
		coupling.WithMaxEntities(svc.Config().Coupling.MaxEntitiesPerCommit),
		coupling.WithMinCount(svc.Config().Coupling.MinCouplingCount),
		coupling.WithMinPercent(svc.Config().Coupling.MinCouplingPercent),
		coupling.WithPrecision(svc.Config().Coupling.Precision),
	)
	result, err := analyzer.AnalyzeTemporal(cmd.Context(), m, window)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Temporal Coupling (%s windows, %d pairs)", window, result.Summary.TotalPairs)
	return renderTable(cmd, title, report.FromCoupling(result), result)
}
