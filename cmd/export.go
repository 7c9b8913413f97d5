package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect host metrics and stage them as CSV blobs",
	Long: `Connects to the configured monitoring backend, summarizes CPU and memory
metrics per host over the reporting period, and uploads one CSV per host
to the tenant's bucket.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.Int("period-days", 0, "reporting period in days")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if d, _ := cmd.Flags().GetInt("period-days"); cmd.Flags().Changed("period-days") {
		cfg.Report.PeriodDays = d
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tenants, err := resolveTenants(ctx)
	if err != nil {
		return err
	}

	p := newPipeline()
	for _, t := range tenants {
		if err := t.Collector.Ping(ctx); err != nil {
			return fmt.Errorf("tenant %s: backend unreachable: %w", t.Name, err)
		}
		n, err := p.Export(ctx, t)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d hosts for %s\n", n, t.Name)
	}
	return nil
}
