package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sprout/internal/config"
	"github.com/verte-zerg/sprout/internal/model"
	"github.com/verte-zerg/sprout/internal/platform"
	"github.com/verte-zerg/sprout/internal/store"
	"github.com/verte-zerg/sprout/internal/timer"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

var (
	statusOutput   string
	settingsFocus  int
	settingsBreak  int
	waitPollPeriod = time.Second
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a focus session or resume a paused one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd.OutOrStdout(), (*timer.Engine).Start)
		},
	}
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd.OutOrStdout(), (*timer.Engine).Pause)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Abandon the current session without completing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd.OutOrStdout(), (*timer.Engine).Reset)
		},
	}
}

func newBreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Start a break (only when idle)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd.OutOrStdout(), (*timer.Engine).StartBreak)
		},
	}
}

// runControl recovers persisted state, applies op, and prints the result.
func runControl(w io.Writer, op func(*timer.Engine)) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := openApp(fileCfg, newStderrLogger(fileCfg), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	a.engine.Recover()
	op(a.engine)
	return writeStatus(w, a.engine.Snapshot(), outputText)
}

func newWaitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Block until the running session completes",
		Args:  cobra.NoArgs,
		RunE:  runWaitCmd,
	}
}

func runWaitCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := openApp(fileCfg, newStderrLogger(fileCfg), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	events := a.engine.Subscribe(1)
	a.engine.Recover()
	session := a.engine.Snapshot().Session
	if !session.Running {
		select {
		case ev := <-events:
			if ev.Type == timer.EventComplete {
				return reportComplete(cmd.OutOrStdout(), ev.Completed)
			}
		default:
		}
		return fmt.Errorf("no running session (mode %s, paused %t)", session.Mode, session.Paused)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go a.watchWake(ctx)

	// Returning closes the engine, which waits for the dispatcher to finish.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type == timer.EventComplete {
				return reportComplete(cmd.OutOrStdout(), ev.Completed)
			}
			// Events may be dropped while the buffer is full. This process
			// holds the lock, so a stopped session has completed.
			if !ev.State.Session.Running {
				return reportComplete(cmd.OutOrStdout(), session.Mode)
			}
		case <-time.After(waitPollPeriod):
			if !a.engine.Snapshot().Session.Running {
				return reportComplete(cmd.OutOrStdout(), session.Mode)
			}
		}
	}
}

func reportComplete(w io.Writer, mode model.Mode) error {
	_, err := fmt.Fprintf(w, "%s complete\n", mode)
	return err
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().StringVarP(&statusOutput, "output", "o", outputText, "output format (text|yaml)")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	if statusOutput != outputText && statusOutput != outputYAML {
		return fmt.Errorf("--output must be %q or %q", outputText, outputYAML)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newStderrLogger(fileCfg)

	a, err := openApp(fileCfg, logger, os.Stderr)
	if err == nil {
		defer a.Close()
		a.engine.Recover()
		return writeStatus(cmd.OutOrStdout(), a.engine.Snapshot(), statusOutput)
	}
	if !errors.Is(err, platform.ErrAlreadyRunning) {
		return err
	}

	// Another process drives the timer; read without mutating.
	st, err := store.Open(resolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "error", cerr)
		}
	}()
	state, err := timer.LoadState(cmd.Context(), st)
	if err != nil {
		logger.Warn("failed to load timer state", "error", err)
	}
	return writeStatus(cmd.OutOrStdout(), projectState(state, time.Now()), statusOutput)
}

// projectState estimates the remaining time of a running session at now.
func projectState(state timer.State, now time.Time) timer.State {
	s := state.Session
	if !s.Running || s.StartedAt == nil {
		return state
	}
	segment := s.SegmentSeconds
	if segment <= 0 {
		segment = state.Settings.DurationSeconds(s.Mode)
	}
	state.Session.RemainingSeconds = timer.Recompute(now, *s.StartedAt, segment)
	return state
}

func writeStatus(w io.Writer, state timer.State, format string) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode status: %w", err)
		}
		return enc.Close()
	}
	s := state.Session
	phase := "idle"
	switch {
	case s.Running:
		phase = "running"
	case s.Paused:
		phase = "paused"
	}
	remaining := s.RemainingSeconds
	if s.Mode == model.ModeIdle {
		remaining = state.Settings.DurationSeconds(model.ModeFocus)
	}
	_, err := fmt.Fprintf(w, "Mode: %s (%s)\nRemaining: %02d:%02d\nFocus: %d min  Break: %d min\nSprouts: %d\n",
		s.Mode, phase,
		remaining/60, remaining%60,
		state.Settings.FocusMinutes, state.Settings.BreakMinutes,
		state.Sprouts,
	)
	return err
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change interval lengths",
		Args:  cobra.NoArgs,
		RunE:  runSettingsCmd,
	}
	cmd.Flags().IntVar(&settingsFocus, "focus", model.DefaultFocusMinutes, "focus length in minutes (5-60, step 5)")
	cmd.Flags().IntVar(&settingsBreak, "break", model.DefaultBreakMinutes, "break length in minutes (5-30, step 5)")
	return cmd
}

func runSettingsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := openApp(fileCfg, newStderrLogger(fileCfg), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()
	a.engine.Recover()

	var update model.SettingsUpdate
	if cmd.Flags().Changed("focus") {
		update.FocusMinutes = &settingsFocus
	}
	if cmd.Flags().Changed("break") {
		update.BreakMinutes = &settingsBreak
	}
	if update.FocusMinutes != nil || update.BreakMinutes != nil {
		if !a.engine.UpdateSettings(update) {
			return errors.New("cannot change settings while a session is running or paused; reset it first")
		}
	}
	s := a.engine.Snapshot().Settings
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Focus: %d min\nBreak: %d min\n", s.FocusMinutes, s.BreakMinutes)
	return err
}
