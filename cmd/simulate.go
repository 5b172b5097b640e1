package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/logging"
	"github.com/smazurov/multistrip/internal/multistrip"
	"github.com/smazurov/multistrip/internal/pins"
	"github.com/smazurov/multistrip/internal/store"
	"github.com/spf13/cobra"
)

// CreateSimulateCmd creates the simulate command.
func CreateSimulateCmd() *cobra.Command {
	var stripsFile string
	var channels int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate [step...]",
		Short: "Replay channel line states against a strips file",
		Long: `Loads the strips file into an in-memory bus table, drives the channel lines of a simulated ` +
			`GPIO chip and prints the bus table after every step. A step is a comma separated list of ` +
			`channel=state pairs, for example "0=1,1=0". The strips file is not modified.`,
		Example:      `  multistrip simulate -f strips.toml 0=1 0=1,1=1 0=0`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})
			return RunSimulate(cmd.OutOrStdout(), stripsFile, channels, args, logging.GetLogger("multistrip"))
		},
	}

	cmd.Flags().StringVarP(&stripsFile, "file", "f", store.DefaultPath, "Strips file to load")
	cmd.Flags().IntVar(&channels, "channels", multistrip.MaxChannels, "Number of active channels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every sample and bus replacement")
	return cmd
}

// Step sets the line state of some channels.
type Step map[int]bool

// ParseStep parses "channel=state[,channel=state...]". States accept the
// strconv.ParseBool spellings.
func ParseStep(s string) (Step, error) {
	step := make(Step)
	for _, pair := range strings.Split(s, ",") {
		ch, st, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("step %q: want channel=state", pair)
		}
		idx, err := strconv.Atoi(ch)
		if err != nil || idx < 0 || idx >= multistrip.MaxChannels {
			return nil, fmt.Errorf("step %q: channel must be 0..%d", pair, multistrip.MaxChannels-1)
		}
		state, err := strconv.ParseBool(st)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", pair, err)
		}
		step[idx] = state
	}
	return step, nil
}

// RunSimulate loads path and applies each step in order, printing the bus
// table after initialization and after every step.
func RunSimulate(w io.Writer, path string, channels int, args []string, logger *slog.Logger) error {
	steps := make([]Step, 0, len(args))
	for _, a := range args {
		step, err := ParseStep(a)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}

	file, err := store.Open(path)
	if err != nil {
		return err
	}
	table, err := busses.NewTable(logger, file.Busses()...)
	if err != nil {
		return err
	}

	sim := pins.NewSim()
	gateway := pins.NewManager(sim, 0, logger)
	defer gateway.Close()

	var now time.Time
	mod := multistrip.NewManager(multistrip.Options{
		Busses:   table,
		Pins:     gateway,
		Lines:    gateway,
		Logger:   logger,
		Channels: channels,
		Now:      func() time.Time { return now },
	})
	mod.DeserializeConfig(file.Section())

	// Lines start at the stored states so initialization is not a transition.
	for _, ch := range mod.Status().Channels {
		if ch.Enabled() {
			sim.Set(ch.Pin, multistrip.LineLevel(ch.KnownState))
		}
	}
	if !mod.Initialize() {
		return fmt.Errorf("initialize: %s", mod.Status().LastError)
	}
	fmt.Fprintln(w, "initial")
	printBusses(w, table.Snapshot())

	for i, step := range steps {
		st := mod.Status()
		for ch, state := range step {
			if ch >= len(st.Channels) || !st.Channels[ch].Enabled() {
				return fmt.Errorf("step %d: channel %d is not active", i+1, ch)
			}
			sim.Set(st.Channels[ch].Pin, multistrip.LineLevel(state))
		}

		now = now.Add(st.SampleInterval + time.Millisecond)
		mod.PeriodicPoll()

		fmt.Fprintf(w, "\nstep %d: %s\n", i+1, args[i])
		printBusses(w, table.Snapshot())
		if gap, ok := table.CheckContiguity(); !ok {
			fmt.Fprintf(w, "  ! bus %d is not contiguous\n", gap)
		}
	}
	return nil
}
