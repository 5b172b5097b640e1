package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/multistrip"
	"github.com/smazurov/multistrip/internal/store"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when a strips file has at least one problem.
var ErrCheckFailed = errors.New("strips file check failed")

// CreateCheckCmd creates the check command.
func CreateCheckCmd() *cobra.Command {
	var stripsFile string
	var channels int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a strips file",
		Long: `Loads the strips file, validates every bus definition, checks that the busses ` +
			`form one contiguous pixel stream and that the multi-strip section refers to existing busses.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunCheck(cmd.OutOrStdout(), stripsFile, channels)
		},
	}

	cmd.Flags().StringVarP(&stripsFile, "file", "f", store.DefaultPath, "Strips file to check")
	cmd.Flags().IntVar(&channels, "channels", multistrip.MaxChannels, "Number of active channels")
	return cmd
}

// RunCheck prints the bus table of path followed by every problem found.
func RunCheck(w io.Writer, path string, channels int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("strips file: %w", err)
	}
	file, err := store.Open(path)
	if err != nil {
		return err
	}

	cfgs := file.Busses()
	printBusses(w, cfgs)

	var problems []string
	for i, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("bus %d: %v", i, err))
		}
	}
	if gap, ok := busses.CheckContiguity(cfgs); !ok {
		problems = append(problems, fmt.Sprintf("bus %d: starts at %d, previous bus ends at %d",
			gap, cfgs[gap].Start, cfgs[gap-1].End()))
	}
	problems = append(problems, checkSection(file.Section(), len(cfgs), channels)...)

	if len(problems) == 0 {
		fmt.Fprintf(w, "\n%s: OK\n", path)
		return nil
	}
	fmt.Fprintln(w)
	for _, p := range problems {
		fmt.Fprintln(w, "  -", p)
	}
	return fmt.Errorf("%w: %d problem(s)", ErrCheckFailed, len(problems))
}

func checkSection(s *multistrip.Section, busCount, channels int) []string {
	if s == nil {
		return nil
	}
	if channels <= 0 || channels > multistrip.MaxChannels {
		channels = multistrip.MaxChannels
	}

	var problems []string
	for i, idx := range s.Map {
		if i >= channels {
			break
		}
		if idx < 0 || idx >= busCount {
			problems = append(problems, fmt.Sprintf("channel %d: maps to bus %d, table has %d", i, idx, busCount))
		}
	}
	for i, t := range s.Type {
		if i >= 2*channels {
			break
		}
		if !busses.Type(t).Known() {
			problems = append(problems, fmt.Sprintf("channel %d: unknown strip type %d", i/2, t))
		}
	}

	busOwner := make(map[int]int)
	for i, idx := range s.Map {
		if i >= channels || (i < len(s.Pin) && s.Pin[i] < 0) {
			continue
		}
		if prev, ok := busOwner[idx]; ok {
			problems = append(problems, fmt.Sprintf("bus %d: targeted by channels %d and %d", idx, prev, i))
			continue
		}
		busOwner[idx] = i
	}

	seen := make(map[int]int)
	for i, pin := range s.Pin {
		if i > channels || pin < 0 {
			continue
		}
		if prev, ok := seen[pin]; ok {
			problems = append(problems, fmt.Sprintf("pin %d: used by entries %d and %d", pin, prev, i))
			continue
		}
		seen[pin] = i
	}
	return problems
}

func printBusses(w io.Writer, cfgs []busses.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS\tTYPE\tORDER\tPINS\tSTART\tLENGTH")
	for i, cfg := range cfgs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%v\t%d\t%d\n", i, cfg.Type, cfg.ColorOrder, cfg.Pins, cfg.Start, cfg.Length)
	}
	tw.Flush()
}
