package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/coupling"
	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/report"
)

var couplingCmd = &cobra.Command{
	Use:   "coupling [path]",
	Short: "Analyze logical change coupling between files",
	Long: `Finds pairs of files that tend to change in the same commit. A high
coupling percentage with no code-level dependency is a sign of hidden
architectural coupling.`,
	RunE: runCoupling,
}

func init() {
	couplingCmd.Flags().Int("min-count", 0, "Minimum co-change count (0 = use config)")
	couplingCmd.Flags().Float64("min-percent", 0, "Minimum coupling percentage (0 = use config)")
	couplingCmd.Flags().Int("max-entities", 0, "Per-commit entity cutoff for pairing (0 = use config)")

	analyzeCmd.AddCommand(couplingCmd)
}

// applyCouplingFlags folds flag overrides into the loaded config so the
// analyzer sees one set of knobs.
func applyCouplingFlags(cmd *cobra.Command, cfg *config.Config) {
	if n, _ := cmd.Flags().GetInt("min-count"); n > 0 {
		cfg.Coupling.MinCouplingCount = n
	}
	if p, _ := cmd.Flags().GetFloat64("min-percent"); p > 0 {
		cfg.Coupling.MinCouplingPercent = p
	}
	if n, _ := cmd.Flags().GetInt("max-entities"); n > 0 {
		cfg.Coupling.MaxEntitiesPerCommit = n
	}
}

func runCoupling(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.CouplingColumns); err != nil {
		return err
	}

	svc, err := buildService(cmd)
	if err != nil {
		return err
	}
	applyCouplingFlags(cmd, svc.Config())

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
	result, err := analyzer.Analyze(cmd.Context(), m)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Logical Coupling (%d pairs, %d commits skipped)",
		result.Summary.TotalPairs, result.Summary.SkippedRevisions)
	return renderTable(cmd, title, report.FromCoupling(result), result)
}
