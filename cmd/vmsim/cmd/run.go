package cmd

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <trace>",
	Short: "Replay an access trace and print the statistics.",
	Long: "Replay an access trace against a simulated MMU. Each line of the " +
		"trace is either `R <vaddr>` or `W <vaddr> <value>`; text after `#` " +
		"is ignored.",
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addFlags(runCmd.Flags())

	runCmd.Flags().Bool("log", false,
		"Log every translation step to stderr.")
	runCmd.Flags().Bool("verbose", false, "Print the value of every read.")
	runCmd.Flags().String("record", "",
		"Record the translations into the SQLite file <record>.sqlite3.")
	runCmd.Flags().Int("monitor", 0,
		"Serve the MMU state on this port and wait for Ctrl+C after the "+
			"replay. Ports below 1000 pick a random port.")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in the default browser.")
}

func runTrace(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	opts, err := loadOptions(flags)
	if err != nil {
		return err
	}

	accesses, err := readTrace(args[0])
	if err != nil {
		return err
	}

	c, closer, err := opts.buildMMU("MMU")
	if err != nil {
		return err
	}
	defer closer.Close()

	if logOn, _ := flags.GetBool("log"); logOn {
		logger := log.New(os.Stderr, "", 0)
		tracing.CollectTrace(c, trace.NewTracer(logger, c))
	}

	if flags.Changed("record") {
		path, _ := flags.GetString("record")
		recorder := datarecording.New(path)
		tracing.CollectTrace(c, tracing.NewDBTracer(c, recorder))
	}

	var monitor *monitoring.Monitor
	var bar *monitoring.ProgressBar

	if flags.Changed("monitor") {
		port, _ := flags.GetInt("monitor")
		monitor = monitoring.NewMonitor().WithPortNumber(port)
		monitor.RegisterComponent(c)
		monitor.StartServer()
		bar = monitor.CreateProgressBar("replay", uint64(len(accesses)))

		if open, _ := flags.GetBool("open-browser"); open {
			err = monitor.OpenBrowser()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}
	}

	verbose, _ := flags.GetBool("verbose")

	err = replay(c, accesses, cmd.OutOrStdout(), verbose, bar)
	if err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), c.Stats())

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
		waitForInterrupt()
	}

	return nil
}

func readTrace(path string) ([]trace.Access, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	accesses, err := trace.ParseAccesses(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return accesses, nil
}

// replay performs the accesses one by one. Reads and writes move one
// little-endian word.
func replay(
	c *mmu.Comp,
	accesses []trace.Access,
	out io.Writer,
	verbose bool,
	bar *monitoring.ProgressBar,
) error {
	buf := make([]byte, 8)

	for i, a := range accesses {
		if bar != nil {
			bar.IncrementInProgress(1)
		}

		err := replayOne(c, a, buf, out, verbose)
		if err != nil {
			if bar != nil {
				bar.MoveInProgressToFailed(1)
			}

			return fmt.Errorf("access %d: %w", i, err)
		}

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}

	return nil
}

func replayOne(
	c *mmu.Comp,
	a trace.Access,
	buf []byte,
	out io.Writer,
	verbose bool,
) error {
	switch a.Kind {
	case trace.AccessRead:
		data, err := c.Read(a.VAddr, 8)
		if err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(out, "R 0x%x = 0x%x\n",
				a.VAddr, binary.LittleEndian.Uint64(data))
		}
	case trace.AccessWrite:
		binary.LittleEndian.PutUint64(buf, a.Value)

		return c.Write(a.VAddr, buf)
	}

	return nil
}

func printStats(out io.Writer, s mmu.Stats) {
	rows := []struct {
		name  string
		value uint64
	}{
		{"translations", s.Translations},
		{"tlb hits", s.TLBHits},
		{"tlb misses", s.TLBMisses},
		{"page faults", s.PageFaults},
		{"free frames", s.FreeFrames},
		{"clean evictions", s.CleanEvictions},
		{"dirty evictions", s.DirtyEvictions},
		{"swap ins", s.SwapIns},
		{"swap outs", s.SwapOuts},
		{"tables created", s.TablesCreated},
	}

	for _, r := range rows {
		fmt.Fprintf(out, "%-16s %d\n", r.name+":", r.value)
	}
}

func waitForInterrupt() {
	fmt.Fprintln(os.Stderr, "Replay done. Press Ctrl+C to exit.")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
}
