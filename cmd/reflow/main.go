package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshharrison/reflow/internal/config"
	"github.com/joshharrison/reflow/internal/cpm"
	"github.com/joshharrison/reflow/internal/graph"
	"github.com/joshharrison/reflow/internal/loader"
	"github.com/joshharrison/reflow/internal/orchestrator"
	"github.com/joshharrison/reflow/internal/reflow"
	"github.com/joshharrison/reflow/internal/report"
	"github.com/joshharrison/reflow/internal/schedule"
	"github.com/joshharrison/reflow/internal/state"
	"github.com/joshharrison/reflow/internal/ui"
	"github.com/joshharrison/reflow/internal/validate"
)

var (
	flagConfig      string
	flagJSON        bool
	flagOutput      string
	flagMaxParallel int
	flagNoColor     bool
	flagHistoryDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Reflow a production schedule after disruption",
		Long: `Reflow rewrites work order start/end times so that every hard
constraint holds again: dependencies complete before dependents start,
work centers run one order at a time, work happens only inside shift
hours, and maintenance windows stay clear. It reports what changed and
why.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagHistoryDir, "history-dir", "", "Run history directory (default "+state.DefaultDir+")")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagJSON {
		cfg.JSONOutput = true
	}
	if flagMaxParallel > 0 {
		cfg.MaxParallel = flagMaxParallel
	}
	if flagHistoryDir != "" {
		cfg.HistoryDir = flagHistoryDir
	}
	return cfg, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input.json>",
		Short: "Reflow a schedule and report the changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rec := state.NewRecord(args[0])

			input, err := loader.ReadFile(args[0])
			if err != nil {
				return err
			}
			rec.WorkOrders = len(input.WorkOrders)

			res, err := reflow.Reflow(input)
			if err != nil {
				rec.Status = "failed"
				rec.Error = err.Error()
				appendHistory(cfg.HistoryDir, rec)
				return err
			}

			rec.Status = "ok"
			rec.Changes = len(res.Changes)
			rec.TotalDelayMinutes = res.Metrics.TotalDelayMinutes
			appendHistory(cfg.HistoryDir, rec)

			if cfg.JSONOutput || flagOutput != "" {
				return writeResult(res, flagOutput)
			}
			report.PrintSummary(os.Stdout, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the result payload to a file")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.json>",
		Short: "Check a schedule against every hard constraint without changing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loader.ReadFile(args[0])
			if err != nil {
				return err
			}

			errs := validate.Check(input.WorkOrders, input.WorkCenters)
			if len(errs) == 0 {
				fmt.Printf("%s schedule is valid (%d work orders, %d work centers)\n",
					ui.OutcomeIcon(true), len(input.WorkOrders), len(input.WorkCenters))
				return nil
			}

			for _, e := range errs {
				fmt.Printf("%s %s\n", ui.OutcomeIcon(false), e.Error())
			}
			return fmt.Errorf("%d constraint violation(s)", len(errs))
		},
	}
}

func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <input.json>",
		Short: "Show dependency order, critical path, and concurrency waves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loader.ReadFile(args[0])
			if err != nil {
				return err
			}

			g, err := graph.Build(input.WorkOrders)
			if err != nil {
				return err
			}
			result, err := cpm.Analyze(g)
			if err != nil {
				return err
			}

			fmt.Printf("%s %d work orders, %d waves, bottleneck chain %d working minutes\n\n",
				ui.BoldCyan("Graph:"), g.Count(), len(result.Waves), result.TotalDuration)

			for _, wave := range result.Waves {
				marker := " "
				if wave.IsCritical {
					marker = ui.Red("!")
				}
				fmt.Printf("  %s wave %d:", marker, wave.Index)
				for _, id := range wave.WorkOrderIDs {
					label := id
					if result.WorkOrders[id].IsCritical {
						label = ui.BoldYellow(id)
					}
					fmt.Printf(" %s", label)
				}
				fmt.Println()
			}

			fmt.Printf("\n  %s", ui.Bold("critical path:"))
			for _, id := range result.CriticalPath {
				fmt.Printf(" %s", id)
			}
			fmt.Println()
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <input.json>...",
		Short: "Reflow several independent scenarios concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			o := orchestrator.New(orchestrator.Config{MaxParallel: cfg.MaxParallel})
			results := o.Run(cmd.Context(), args)
			summary := orchestrator.Summarize(results)

			fmt.Printf("\n%s %d scenario(s): %d ok, %d failed — %d change(s), %d minute(s) total delay\n",
				ui.BoldCyan("Batch:"),
				summary.Scenarios, summary.Scenarios-summary.Failed, summary.Failed,
				summary.Changes, summary.TotalDelayMinutes)

			if summary.Failed > 0 {
				return fmt.Errorf("%d scenario(s) failed", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagMaxParallel, "max-parallel", 0, "Max concurrent scenarios (default from config)")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past reflow runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			h, err := state.Load(cfg.HistoryDir)
			if err != nil {
				return err
			}
			if len(h.Runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			runs := append([]state.RunRecord(nil), h.Runs...)
			sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

			for _, r := range runs {
				icon := ui.OutcomeIcon(r.Status == "ok")
				fmt.Printf("%s %s %s %s — %d work orders, %d changes, %d min delay\n",
					icon, ui.Dim(r.StartedAt.Format("2006-01-02 15:04:05")), ui.Bold(r.InputPath), ui.Dim(r.ID),
					r.WorkOrders, r.Changes, r.TotalDelayMinutes)
				if r.Error != "" {
					fmt.Printf("    %s\n", ui.Red(r.Error))
				}
			}
			return nil
		},
	}
}

func appendHistory(dir string, rec state.RunRecord) {
	h, err := state.Load(dir)
	if err == nil {
		err = h.Append(rec)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s record run history: %v\n", ui.Yellow("warning:"), err)
	}
}

func writeResult(res *schedule.Result, path string) error {
	if path == "" {
		return loader.WriteResult(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := loader.WriteResult(f, res); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s wrote %s\n", ui.OutcomeIcon(true), path)
	return nil
}
