package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebas80sebas/zabreport/internal/aggregate"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
	"github.com/sebas80sebas/zabreport/internal/report"
	"github.com/sebas80sebas/zabreport/internal/source"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Collect and display the current host metric summary",
	Long: `Connects to the monitoring backend, summarizes CPU and memory metrics
per host, and prints the aggregate rollup without touching object storage.
Useful for debugging collection and checking rankings before generating a
workbook.`,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.Int("period-days", 0, "reporting period in days")
	f.Int("top", 0, "ranking table size")
	f.String("output", "table", "output format: table, json")
	f.String("output-file", "", "write output to file")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if d, _ := cmd.Flags().GetInt("period-days"); cmd.Flags().Changed("period-days") {
		cfg.Report.PeriodDays = d
	}
	if n, _ := cmd.Flags().GetInt("top"); cmd.Flags().Changed("top") {
		cfg.Report.TopN = n
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	collector, err := resolveCollector(cfg.Zabbix)
	if err != nil {
		return err
	}
	if err := collector.Ping(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}

	till := time.Now()
	hosts, err := collector.Collect(ctx, source.Options{
		From: till.AddDate(0, 0, -cfg.Report.PeriodDays),
		Till: till,
	})
	if err != nil {
		return fmt.Errorf("collecting metrics: %w", err)
	}

	agg := aggregate.Aggregate(model.Flatten(hosts), hostgroups.Empty(), aggregate.Options{
		TopN: cfg.Report.TopN,
		Thresholds: rank.Thresholds{
			Critical: cfg.Report.Bands.Critical,
			Warning:  cfg.Report.Bands.Warning,
		},
	})

	w := os.Stdout
	if outFile, _ := cmd.Flags().GetString("output-file"); outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	format, _ := cmd.Flags().GetString("output")
	writer := report.NewSummaryWriter(format, w)
	return writer.Summarize(agg, report.SummaryMeta{
		Account:     "default",
		Backend:     collector.BackendType(),
		CollectedAt: till,
		Period:      fmt.Sprintf("Last %d days", cfg.Report.PeriodDays),
	})
}
