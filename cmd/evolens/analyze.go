package main

import (
	"github.com/spf13/cobra"

	"github.com/evolens/evolens/internal/output"
	"github.com/evolens/evolens/internal/service/analysis"
	"github.com/evolens/evolens/pkg/analyzer"
	"github.com/evolens/evolens/pkg/analyzer/age"
	"github.com/evolens/evolens/pkg/analyzer/churn"
	"github.com/evolens/evolens/pkg/analyzer/coupling"
	"github.com/evolens/evolens/pkg/analyzer/hotspot"
	"github.com/evolens/evolens/pkg/analyzer/ownership"
	"github.com/evolens/evolens/pkg/analyzer/trend"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [path]",
	Aliases: []string{"a"},
	Short:   "Run history analysis (all analyzers if no subcommand specified)",
	RunE:    runAnalyze,
}

// fullAnalysis holds the results from all analyzers.
type fullAnalysis struct {
	Coupling  *coupling.Analysis  `json:"coupling,omitempty"`
	Temporal  *coupling.Analysis  `json:"temporal_coupling,omitempty"`
	Churn     *churn.Analysis     `json:"churn,omitempty"`
	Hotspots  *hotspot.Analysis   `json:"hotspots,omitempty"`
	Ownership *ownership.Analysis `json:"ownership,omitempty"`
	Age       *age.Analysis       `json:"age,omitempty"`
	Trend     *trend.Analysis     `json:"trend,omitempty"`
}

func init() {
	// Persistent flags inherited by all analyzer subcommands
	analyzeCmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, json, csv, yaml, markdown")
	analyzeCmd.PersistentFlags().StringP("output", "o", "", "Write output to file")
	analyzeCmd.PersistentFlags().Bool("no-cache", false, "Disable caching")
	analyzeCmd.PersistentFlags().String("log", "", "Read a pre-extracted revision log (CSV or JSON) instead of a repository")
	analyzeCmd.PersistentFlags().String("complexity", "", "Complexity scores file (CSV: entity[,timestamp],score or JSON)")
	analyzeCmd.PersistentFlags().String("after", "", "Only analyze commits after this time (RFC 3339 or YYYY-MM-DD)")
	analyzeCmd.PersistentFlags().String("before", "", "Only analyze commits before this time (RFC 3339 or YYYY-MM-DD)")
	analyzeCmd.PersistentFlags().Bool("merges", false, "Include merge commits")
	analyzeCmd.PersistentFlags().String("sort", "", "Sort rows by column")
	analyzeCmd.PersistentFlags().Bool("desc", false, "Sort in descending order")
	analyzeCmd.PersistentFlags().IntP("limit", "n", 0, "Limit the number of rows (0 = all)")
	analyzeCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	svc, err := buildService(cmd)
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, svc, args)
	if err != nil {
		return err
	}
	scores, err := loadComplexity(cmd)
	if err != nil {
		return err
	}

	results, err := svc.Run(cmd.Context(), m, analysis.Request{
		Kinds: []analyzer.Kind{
			analyzer.KindCoupling,
			analyzer.KindTemporal,
			analyzer.KindChurn,
			analyzer.KindHotspot,
			analyzer.KindOwnership,
			analyzer.KindAge,
			analyzer.KindTrend,
		},
		Complexity: scores,
	})
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&fullAnalysis{
		Coupling:  results.Coupling,
		Temporal:  results.Temporal,
		Churn:     results.Churn,
		Hotspots:  results.Hotspot,
		Ownership: results.Ownership,
		Age:       results.Age,
		Trend:     results.Trend,
	})
}
