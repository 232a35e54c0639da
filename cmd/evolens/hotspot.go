package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/pkg/analyzer/hotspot"
	"github.com/evolens/evolens/pkg/report"
)

var hotspotCmd = &cobra.Command{
	Use:   "hotspot [path]",
	Short: "Rank files by change frequency combined with complexity",
	Long: `Joins revision counts against an externally measured complexity map
(--complexity, CSV or JSON). Files the complexity collaborator could not
measure are still ranked on churn alone and flagged.`,
	RunE: runHotspot,
}

func init() {
	hotspotCmd.Flags().String("strategy", "", "Score combination: multiply or ranksum (default from config)")

	analyzeCmd.AddCommand(hotspotCmd)
}

func runHotspot(cmd *cobra.Command, args []string) error {
	if err := validateSort(cmd, report.HotspotColumns); err != nil {
		return err
	}

	svc, err := buildService(cmd)
	if err != nil {
		return err
	}

	strategy := hotspot.Strategy(svc.Config().Hotspot.Strategy)
	if s, _ := cmd.Flags().GetString("strategy"); s != "" {
		strategy = hotspot.Strategy(s)
		if !strategy.Valid() {
			return fmt.Errorf("invalid strategy %q (want multiply or ranksum)", s)
		}
	}

	scores, err := loadComplexity(cmd)
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, svc, args)
	if err != nil {
		return err
	}

	result, err := hotspot.New(hotspot.WithStrategy(strategy)).Analyze(cmd.Context(), m, scores)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Hotspots (%s, %d unresolved)",
		result.Strategy, result.Summary.UnresolvedEntities)
	return renderTable(cmd, title, report.FromHotspot(result), result)
}
