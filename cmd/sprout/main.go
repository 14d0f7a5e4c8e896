// Package main provides the CLI entrypoint for sprout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/sprout/internal/clock"
	"github.com/verte-zerg/sprout/internal/config"
	"github.com/verte-zerg/sprout/internal/model"
	"github.com/verte-zerg/sprout/internal/notify"
	"github.com/verte-zerg/sprout/internal/platform"
	"github.com/verte-zerg/sprout/internal/store"
	"github.com/verte-zerg/sprout/internal/timer"
	"github.com/verte-zerg/sprout/internal/tui"
	"github.com/verte-zerg/sprout/internal/wake"
)

var (
	timerFocus int
	timerBreak int
	dbPath     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sprout",
		Short:         "Focus/break timer that grows a garden",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.Flags().IntVar(&timerFocus, "focus", model.DefaultFocusMinutes, "focus length in minutes (5-60, step 5)")
	rootCmd.Flags().IntVar(&timerBreak, "break", model.DefaultBreakMinutes, "break length in minutes (5-30, step 5)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/sprout/sprout.db)")

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newBreakCmd())
	rootCmd.AddCommand(newWaitCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, closeLog, err := newFileLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := openApp(fileCfg, logger, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	update, ok := settingsFromFlags(cmd, fileCfg)
	a.recoverWithSettings(update, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.watchWake(ctx)

	m := tui.NewModel(a.engine, tui.Options{
		Prefs:         a.store,
		NotifyBlocked: a.notifyBlocked,
		Logger:        logger.Named("tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// app bundles everything a command needs to drive the timer.
type app struct {
	logger        hclog.Logger
	store         *store.Store
	lock          *platform.Lock
	engine        *timer.Engine
	notifyBlocked bool
}

// openApp opens the database, takes the process lock, and wires the engine
// to its completion dispatcher. The engine is not recovered yet.
func openApp(fileCfg config.FileConfig, logger hclog.Logger, bell io.Writer) (*app, error) {
	path := resolveDBPath()
	lock, err := platform.AcquireLock(path)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return nil, fmt.Errorf("%w; close the open timer first", err)
		}
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		_ = lock.Release()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	clk := clock.System{}
	engine := timer.New(st, clk, timer.WithLogger(logger.Named("engine")))
	dispatcher := &notify.Dispatcher{
		Garden:   engine,
		Recorder: st,
		Clock:    clk,
		Logger:   logger.Named("notify"),
	}
	if fileCfg.BellEnabled() {
		dispatcher.Alerter = notify.Bell{Out: bell}
	}
	notifyBlocked := false
	if fileCfg.DesktopEnabled() {
		desktop := notify.NewDesktopNotifier()
		if notify.Supported(desktop) {
			dispatcher.Notifier = desktop
		} else {
			notifyBlocked = true
			logger.Debug("desktop notifications unavailable")
		}
	}
	engine.SetCompletionSink(dispatcher)

	return &app{
		logger:        logger,
		store:         st,
		lock:          lock,
		engine:        engine,
		notifyBlocked: notifyBlocked,
	}, nil
}

// Close stops the engine and releases the database and lock.
func (a *app) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close db", "error", err)
	}
	if err := a.lock.Release(); err != nil {
		a.logger.Error("failed to release lock", "error", err)
	}
}

// recoverWithSettings completes anything that elapsed while sprout was closed,
// then applies startup interval lengths. It reports whether they were applied.
func (a *app) recoverWithSettings(update model.SettingsUpdate, apply bool) bool {
	a.engine.Recover()
	if !apply {
		return false
	}
	if !a.engine.UpdateSettings(update) {
		a.logger.Warn("ignoring interval lengths while a session is active")
		return false
	}
	return true
}

func (a *app) watchWake(ctx context.Context) {
	w := &wake.Watcher{Logger: a.logger.Named("wake")}
	w.Run(ctx, func(reason wake.Reason) {
		a.logger.Info("recovering after wake", "reason", reason)
		a.engine.Recover()
	})
}

// settingsFromFlags merges --focus/--break with [timer] config values. Flags
// win over config; nothing is returned when neither is set.
func settingsFromFlags(cmd *cobra.Command, fileCfg config.FileConfig) (model.SettingsUpdate, bool) {
	var update model.SettingsUpdate
	focus, brk := timerFocus, timerBreak
	if applyIntConfig(cmd, "focus", &focus, fileCfg.Timer.Focus) || cmd.Flags().Changed("focus") {
		update.FocusMinutes = &focus
	}
	if applyIntConfig(cmd, "break", &brk, fileCfg.Timer.Break) || cmd.Flags().Changed("break") {
		update.BreakMinutes = &brk
	}
	return update, update.FocusMinutes != nil || update.BreakMinutes != nil
}

// applyIntConfig copies a config value into target unless the flag was set.
// It reports whether a config value was applied.
func applyIntConfig(cmd *cobra.Command, name string, target, value *int) bool {
	if value == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return false
	}
	*target = *value
	return true
}

func resolveDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return config.DefaultDBPath()
}

func newFileLogger(fileCfg config.FileConfig) (hclog.Logger, func(), error) {
	path := fileCfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "sprout",
		Level:  fileCfg.LogLevel(),
		Output: f,
	})
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}, nil
}

func newStderrLogger(fileCfg config.FileConfig) hclog.Logger {
	level := fileCfg.LogLevel()
	if fileCfg.Log.Level == nil {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "sprout",
		Level:  level,
		Output: os.Stderr,
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
