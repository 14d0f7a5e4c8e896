package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sprout/internal/clock"
	"github.com/verte-zerg/sprout/internal/model"
	"github.com/verte-zerg/sprout/internal/stats"
	"github.com/verte-zerg/sprout/internal/statsui"
	"github.com/verte-zerg/sprout/internal/store"
	"github.com/verte-zerg/sprout/internal/timer"
)

var (
	statsSince  string
	statsLast   int
	statsPlain  bool
	exportPath  string
	exportSince string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completed session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N completions")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.StatsConfig{Since: since, Last: statsLast}

	st, err := store.Open(resolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return renderPlainStats(cmd, st, cfg, time.Now())
	}
	m := statsui.NewModel(st, clock.System{}, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(cmd *cobra.Command, st stats.Lister, cfg model.StatsConfig, now time.Time) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg, now)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	w := cmd.OutOrStdout()
	if err := stats.RenderSummary(w, report); err != nil {
		return err
	}
	if err := stats.RenderDays(w, report.Days); err != nil {
		return err
	}
	return stats.RenderChart(w, report.Days, 0)
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

// exportDoc is the YAML document written by the export command.
type exportDoc struct {
	ExportedAt  time.Time          `yaml:"exported_at"`
	Settings    model.Settings     `yaml:"settings"`
	Session     model.Session      `yaml:"session"`
	Sprouts     int                `yaml:"sprouts"`
	Completions []model.Completion `yaml:"completions"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export timer state and history as YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportPath, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&exportSince, "since", "", "only completions since date (YYYY-MM-DD)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(exportSince)
	if err != nil {
		return err
	}
	st, err := store.Open(resolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	doc, err := buildExport(cmd, st, model.StatsConfig{Since: since}, time.Now())
	if err != nil {
		return err
	}

	if exportPath == "" {
		return writeExport(cmd.OutOrStdout(), doc)
	}
	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := writeExport(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	logErrf("Wrote %s\n", exportPath)
	return nil
}

func buildExport(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig, now time.Time) (exportDoc, error) {
	state, err := timer.LoadState(cmd.Context(), st)
	if err != nil {
		logErrf("warning: %v\n", err)
	}
	state = projectState(state, now)
	completions, err := st.ListCompletions(cmd.Context(), cfg)
	if err != nil {
		return exportDoc{}, fmt.Errorf("failed to list completions: %w", err)
	}
	if completions == nil {
		completions = []model.Completion{}
	}
	return exportDoc{
		ExportedAt:  now.UTC(),
		Settings:    state.Settings,
		Session:     state.Session,
		Sprouts:     state.Sprouts,
		Completions: completions,
	}, nil
}

func writeExport(w io.Writer, doc exportDoc) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}
