package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/devsel/internal/harness"
	"github.com/roach88/devsel/internal/render"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print its trace",
		Long: `Run a single scenario file and print every step it produced.

The scenario runs against an in-memory journal with a deterministic clock,
so its output is stable across runs.

Exit codes:
  0 - The scenario passed
  1 - An expectation, invariant or assertion failed
  2 - Command error (scenario not found or malformed)

Example:
  devsel run ./scenarios/jack_preempts.yaml
  devsel run ./scenarios/jack_preempts.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario, harness.WithLogger(opts.logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.Format == "json" {
		var cerr *CLIError
		if !result.Pass {
			cerr = &CLIError{
				Code:    "E_SCENARIO_FAILED",
				Message: fmt.Sprintf("scenario %s failed", scenario.Name),
				Details: result.Errors,
			}
		}
		if err := newFormatter(opts.RootOptions, cmd).Respond(result, result.SessionID, cerr); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
		fmt.Fprintln(w, traceTable(result.Trace))
		fmt.Fprintln(w, result.Visualization)
		if result.Pass {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func traceTable(trace []harness.TraceEntry) string {
	rows := make([][]string, 0, len(trace))
	for _, e := range trace {
		active := e.Active
		if e.Error != "" {
			active = "rejected: " + e.Error
		} else if active == "" {
			active = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			e.Label,
			active,
			strings.Join(e.Connected, ", "),
			strings.Join(e.Priority, " > "),
		})
	}
	return render.Table([]string{"#", "Step", "Active", "Connected", "Priority"}, rows)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
