package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/engine"
	"github.com/roach88/devsel/internal/logging"
	"github.com/roach88/devsel/internal/render"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/timeline"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Catalog   string
	Strategy  string
	Database  string
	SessionID string
	NoColor   bool
}

// SimulatedStep is one accepted step of a simulation.
type SimulatedStep struct {
	Index     int      `json:"index"`
	Seq       int64    `json:"seq"`
	Label     string   `json:"label"`
	Active    string   `json:"active,omitempty"`
	Connected []string `json:"connected"`
	Priority  []string `json:"priority"`
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	SessionID     string          `json:"session_id"`
	Strategy      string          `json:"strategy"`
	Steps         []SimulatedStep `json:"steps"`
	Visualization string          `json:"visualization"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <kind:device>...",
		Short: "Apply plug, unplug and select events and show each step",
		Long: `Apply events in order to a fresh strategy and print every resulting step.

Each event has the form kind:device where kind is plug, unplug or select.
With --db the session is journaled and can later be inspected with
"devsel trace" and verified with "devsel replay".

Exit codes:
  0 - All events applied
  1 - An event was rejected (e.g. selecting a device that is not connected)
  2 - Command error (bad event, unknown device, journal not writable)

Examples:
  devsel simulate "plug:USB 1" "plug:USB 2" "select:USB 1"
  devsel simulate --db ./devsel.db "plug:Internal" "plug:3.5mm"
  devsel simulate --format json "plug:HDMI 1"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "strategy kind (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite journal (default from config, else in-memory)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id (default: generated)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable styled output")

	return cmd
}

func runSimulate(opts *SimulateOptions, args []string, cmd *cobra.Command) error {
	ctx, cancel := signalContext(cmd, opts.logger())
	defer cancel()
	out := newFormatter(opts.RootOptions, cmd)

	c, err := loadCatalog(opts.RootOptions, opts.Catalog)
	if err != nil {
		return err
	}

	events := make([]timeline.Event, 0, len(args))
	for _, arg := range args {
		ev, err := timeline.ParseEvent(c, arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid event", err)
		}
		events = append(events, ev)
	}

	kind := opts.Strategy
	if kind == "" {
		kind = opts.Config.Strategy
	}
	strat, err := strategy.New(kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid strategy", err)
	}

	journal, err := openJournal(opts.Database, opts.Config.Journal)
	if err != nil {
		return err
	}
	defer journal.Close()

	engineOpts := []engine.Option{
		engine.WithJournal(journal),
		engine.WithCatalog(c.Spec()),
		engine.WithLogger(logging.Component(opts.logger(), "engine")),
	}
	if opts.SessionID != "" {
		engineOpts = append(engineOpts, engine.WithSessionID(opts.SessionID))
	}
	last, err := journal.GetLastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	engineOpts = append(engineOpts, engine.WithClock(engine.NewClockAt(last)))
	eng := engine.New(timeline.New(strat), engineOpts...)

	result := SimulateResult{
		SessionID: eng.SessionID(),
		Strategy:  strat.Kind(),
		Steps:     make([]SimulatedStep, 0, len(events)),
	}

	styled := !opts.NoColor && opts.Format == "text" && render.IsTerminal(cmd.OutOrStdout())
	w := cmd.OutOrStdout()
	if opts.Format == "text" {
		printSimulatedStep(w, c, 0, eng.Timeline().Last(), styled)
	}

	steps, applyErr := applyEvents(ctx, eng, events)
	for _, res := range steps {
		result.Steps = append(result.Steps, simulatedStep(res))
		if opts.Format == "text" {
			printSimulatedStep(w, c, res.Index, res.Step, styled)
		}
	}
	result.Visualization = eng.Timeline().Last().Visualize()

	if applyErr != nil {
		return simulateError(out, result, applyErr)
	}

	if opts.Format == "json" {
		return out.Respond(result, result.SessionID, nil)
	}
	out.VerboseLog("session %s: %d steps", result.SessionID, len(result.Steps))
	return nil
}

// applyEvents feeds events through the engine's Run loop one at a time and
// stops at the first failure.
func applyEvents(ctx context.Context, eng *engine.Engine, events []timeline.Event) ([]engine.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- eng.Run(ctx)
	}()

	var results []engine.Result
	var failure error
	for _, ev := range events {
		done := make(chan engine.Result, 1)
		if !eng.Enqueue(engine.Request{At: engine.AtHead, Event: ev, Done: done}) {
			failure = errors.New("engine stopped")
			break
		}
		res := <-done
		if res.Err != nil {
			failure = fmt.Errorf("%s: %w", ev, res.Err)
			break
		}
		results = append(results, res)
	}

	eng.Stop()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return results, err
	}
	return results, failure
}

func simulateError(out *OutputFormatter, result SimulateResult, err error) error {
	code := "E_RUNTIME"
	switch {
	case strategy.IsNotConnected(err):
		code = "E_NOT_CONNECTED"
	case engine.IsJournalError(err):
		code = "E_JOURNAL"
	}

	if out.Format == "json" {
		cerr := &CLIError{Code: code, Message: err.Error()}
		if encErr := out.Respond(result, result.SessionID, cerr); encErr != nil {
			return encErr
		}
	}
	return WrapExitError(ExitFailure, "event rejected", err)
}

func simulatedStep(res engine.Result) SimulatedStep {
	s := SimulatedStep{
		Index:     res.Index,
		Seq:       res.Seq,
		Label:     res.Step.Label(),
		Connected: device.Names(res.Step.Connected()),
		Priority:  device.Names(res.Step.Ranked()),
	}
	if a, ok := res.Step.Active(); ok {
		s.Active = a.Name
	}
	return s
}

func printSimulatedStep(w io.Writer, c *device.Catalog, index int, s timeline.Step, styled bool) {
	fmt.Fprintf(w, "[%d] %s\n", index, s.Label())
	fmt.Fprintf(w, "    %s\n", render.Chips(c, s, styled))
	fmt.Fprintf(w, "    %s\n", s.Visualize())
}

// openJournal opens the journal named by the flag, falling back to the
// config file and then an in-memory journal.
func openJournal(flag, configured string) (*store.Store, error) {
	path := flag
	if path == "" {
		path = configured
	}
	if path == "" {
		path = store.MemoryPath
	}
	j, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}
