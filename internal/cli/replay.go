package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/devsel/internal/engine"
	"github.com/roach88/devsel/internal/logging"
	"github.com/roach88/devsel/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string            `json:"session_id"`
	Strategy      string            `json:"strategy"`
	Steps         int               `json:"steps"`
	Deterministic bool              `json:"deterministic"`
	Mismatches    []engine.Mismatch `json:"mismatches,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Re-apply the journaled events of each session to a fresh strategy and
compare every resulting step digest with the journaled one.

Exit codes:
  0 - All sessions replayed identically
  1 - Determinism verification failed (differences detected)
  2 - Command error (journal not found, etc.)

Examples:
  devsel replay --db ./devsel.db
  devsel replay --db ./devsel.db --session 0192...
  devsel replay --db ./devsel.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExistingJournal(opts.Database, opts.Config.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessionIDs []string
	if opts.SessionID != "" {
		sessionIDs = []string{opts.SessionID}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			sessionIDs = append(sessionIDs, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessionIDs)),
		TotalSessions:    len(sessionIDs),
		AllDeterministic: true,
	}

	logger := logging.Component(opts.logger(), "replay")
	for _, id := range sessionIDs {
		sessionResult := replaySession(ctx, st, id, opts.RootOptions)
		if !sessionResult.Deterministic {
			result.AllDeterministic = false
			logger.Warn("replay diverged", "session", id, "mismatches", len(sessionResult.Mismatches), "error", sessionResult.Error)
		}
		result.Sessions = append(result.Sessions, sessionResult)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replaySession replays one session. Failures to re-apply an event are
// reported as non-deterministic rather than aborting the whole command.
func replaySession(ctx context.Context, st *store.Store, id string, opts *RootOptions) ReplaySessionResult {
	report, err := engine.Replay(ctx, st, id,
		engine.WithLogger(logging.Component(opts.logger(), "engine")))
	if err != nil {
		return ReplaySessionResult{SessionID: id, Error: err.Error()}
	}
	return ReplaySessionResult{
		SessionID:     id,
		Strategy:      report.Strategy,
		Steps:         report.Steps,
		Deterministic: report.OK(),
		Mismatches:    report.Mismatches,
	}
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	var cerr *CLIError
	if !result.AllDeterministic {
		cerr = &CLIError{Code: "E_DETERMINISM", Message: "determinism verification failed"}
	}

	out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := out.Respond(result, "", cerr); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Session: %s\n", status, s.SessionID)
		if s.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", s.Error)
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "  Steps: %d (strategy %s)\n", s.Steps, s.Strategy)

		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "  Mismatch at seq %d (%s)\n", m.Seq, m.Label)
			if verbose {
				fmt.Fprintf(w, "    want %s\n    got  %s\n", m.Want, m.Got)
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
