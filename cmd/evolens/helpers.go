package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/evolens/evolens/internal/cache"
	"github.com/evolens/evolens/internal/output"
	"github.com/evolens/evolens/internal/progress"
	"github.com/evolens/evolens/internal/revlog"
	"github.com/evolens/evolens/internal/service/analysis"
	"github.com/evolens/evolens/pkg/complexity"
	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/report"
	"github.com/evolens/evolens/pkg/revision"
)

// getPath returns the repository path from args, defaulting to ".".
func getPath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

func getOutputFile(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	return out
}

// loadConfig resolves configuration from --config or the standard search
// locations.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}

// buildService wires configuration and the revision cache into a service.
func buildService(cmd *cobra.Command) (*analysis.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	store, err := cache.New(cfg.Cache.Dir,
		time.Duration(cfg.Cache.TTL)*time.Hour,
		cfg.Cache.Enabled && !noCache)
	if err != nil {
		return nil, err
	}

	return analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithCache(store),
	), nil
}

// parseTimeFlag accepts RFC 3339 or a plain date.
func parseTimeFlag(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339 or YYYY-MM-DD)", value)
	}
	return t, nil
}

// loadModel builds the revision model either from a pre-extracted log file
// (--log) or by walking the repository at the given path.
func loadModel(cmd *cobra.Command, svc *analysis.Service, args []string) (*revision.Model, error) {
	if logFile, _ := cmd.Flags().GetString("log"); logFile != "" {
		revs, err := revlog.LoadFile(logFile)
		if err != nil {
			return nil, err
		}
		return revision.Ingest(revs)
	}

	path, err := filepath.Abs(getPath(args))
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	opts := analysis.HistoryOptions{}
	if after, _ := cmd.Flags().GetString("after"); after != "" {
		t, err := parseTimeFlag(after)
		if err != nil {
			return nil, err
		}
		opts.After = &t
	}
	if before, _ := cmd.Flags().GetString("before"); before != "" {
		t, err := parseTimeFlag(before)
		if err != nil {
			return nil, err
		}
		opts.Before = &t
	}
	opts.Merges, _ = cmd.Flags().GetBool("merges")

	spinner := progress.NewQuiet("Extracting history...")
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		spinner = progress.NewSpinner("Extracting history...")
	}
	opts.OnCommit = func(n int) { spinner.Tick() }

	m, err := svc.LoadHistory(cmd.Context(), path, opts)
	spinner.FinishSuccess()
	if err != nil {
		return nil, fmt.Errorf("history extraction failed (is this a git repository?): %w", err)
	}
	return m, nil
}

// loadComplexity reads the --complexity file, if given.
func loadComplexity(cmd *cobra.Command) (*complexity.Map, error) {
	path, _ := cmd.Flags().GetString("complexity")
	if path == "" {
		return nil, nil
	}
	return complexity.LoadFile(path)
}

// assembleOptions reads the shared sort/limit flags.
func assembleOptions(cmd *cobra.Command) report.Options {
	opts := report.Options{}
	opts.SortBy, _ = cmd.Flags().GetString("sort")
	opts.Descending, _ = cmd.Flags().GetBool("desc")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	return opts
}

// validateSort rejects an unknown --sort field before any history work.
func validateSort(cmd *cobra.Command, columns []string) error {
	opts := assembleOptions(cmd)
	if opts.SortBy == "" {
		return nil
	}
	_, err := report.Assemble(&report.Table{Columns: columns}, report.Options{SortBy: opts.SortBy})
	return err
}

// renderTable assembles and writes one result table.
func renderTable(cmd *cobra.Command, title string, table *report.Table, data any) error {
	assembled, err := report.Assemble(table, assembleOptions(cmd))
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable(title, assembled.Columns, assembled.Strings(), data))
}
