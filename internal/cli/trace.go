package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/devsel/internal/render"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/timeline"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Kind      string // optional - filter to one event kind
}

// TraceResult holds the trace output for one session.
type TraceResult struct {
	Session store.Session      `json:"session"`
	Steps   []store.StepRecord `json:"steps"`
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID         string `json:"id"`
	Strategy   string `json:"strategy"`
	CreatedSeq int64  `json:"created_seq"`
	Steps      int    `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled steps of a session",
		Long: `Show the steps journaled for a session in sequence order.

Without --session the sessions in the journal are listed instead.

Examples:
  devsel trace --db ./devsel.db
  devsel trace --db ./devsel.db --session 0192...
  devsel trace --db ./devsel.db --session 0192... --kind select --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind (plug|unplug|select)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	var kind timeline.Kind
	if opts.Kind != "" {
		k, err := timeline.ParseKind(opts.Kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --kind", err)
		}
		kind = k
	}

	st, err := openExistingJournal(opts.Database, opts.Config.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.SessionID == "" {
		return listSessions(ctx, opts.RootOptions, st, cmd)
	}

	sess, err := st.ReadSession(ctx, opts.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return WrapExitError(ExitCommandError, "unknown session", err)
		}
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	records, err := st.ReadSteps(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}
	if kind != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Kind == string(kind) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Respond(TraceResult{Session: sess, Steps: records}, sess.ID, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session: %s (strategy %s)\n", sess.ID, sess.Strategy)
	if len(records) == 0 {
		fmt.Fprintln(w, "No steps journaled.")
		return nil
	}
	fmt.Fprintln(w, render.JournalTable(records))
	return nil
}

func listSessions(ctx context.Context, opts *RootOptions, st *store.Store, cmd *cobra.Command) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		steps, err := st.ReadSteps(ctx, s.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read steps", err)
		}
		summaries = append(summaries, SessionSummary{
			ID:         s.ID,
			Strategy:   s.Strategy,
			CreatedSeq: s.CreatedSeq,
			Steps:      len(steps),
		})
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID,
			s.Strategy,
			strconv.FormatInt(s.CreatedSeq, 10),
			strconv.Itoa(s.Steps),
		})
	}
	fmt.Fprintln(w, render.Table([]string{"Session", "Strategy", "Created", "Steps"}, rows))
	return nil
}

// openExistingJournal opens a journal file that must already exist.
// Read-only commands never create a journal as a side effect.
func openExistingJournal(flag, configured string) (*store.Store, error) {
	path := flag
	if path == "" {
		path = configured
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no journal: pass --db or set journal in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}
