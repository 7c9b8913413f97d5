package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebas80sebas/zabreport/internal/export"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
	"github.com/sebas80sebas/zabreport/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the Excel workbook from staged CSV blobs",
	Long: `Reads the per-host CSV blobs and the optional host-group document from
the tenant's bucket, builds the dashboard and per-host sheets, and uploads
the finished workbook back to the bucket.

With --local, reads CSV files from a directory and writes the workbook to
a local file instead of object storage.`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.Int("top", 0, "ranking table size")
	f.String("local", "", "read CSVs from this directory instead of the bucket")
	f.String("output-file", "report.xlsx", "workbook path in --local mode")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if n, _ := cmd.Flags().GetInt("top"); cmd.Flags().Changed("top") {
		cfg.Report.TopN = n
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("local"); dir != "" {
		outFile, _ := cmd.Flags().GetString("output-file")
		return runReportLocal(dir, outFile)
	}

	tenants, err := resolveTenants(ctx)
	if err != nil {
		return err
	}

	p := newPipeline()
	for _, t := range tenants {
		key, err := p.Report(ctx, t)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s for %s\n", key, t.Name)
	}
	return nil
}

// runReportLocal renders a workbook from a directory of CSV files, for
// inspecting report output without bucket access.
func runReportLocal(dir, outFile string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var hosts []model.HostMetrics
	var groupDoc []byte
	for _, entry := range entries {
		name := entry.Name()
		path := dir + "/" + name
		if name == hostgroups.DocumentBlob {
			groupDoc, _ = os.ReadFile(path)
			continue
		}
		if entry.IsDir() || len(name) < 5 || name[len(name)-4:] != ".csv" || name[0] == '_' {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		host := name[:len(name)-4]
		hm, err := export.DecodeCSV(host, data)
		if err != nil {
			log.Warn("skipping host, data unreadable", "host", host, "error", err)
			continue
		}
		hosts = append(hosts, hm)
	}
	if len(hosts) == 0 {
		return fmt.Errorf("no host CSVs found in %s", dir)
	}

	rep := report.Build(hosts, hostgroups.Load(groupDoc, log), report.Params{
		GeneratedAt: time.Now(),
		Period:      fmt.Sprintf("Last %d days", cfg.Report.PeriodDays),
		TopN:        cfg.Report.TopN,
		Thresholds: rank.Thresholds{
			Critical: cfg.Report.Bands.Critical,
			Warning:  cfg.Report.Bands.Warning,
		},
	})

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outFile, err)
	}
	defer f.Close()

	writer := report.NewExcelWriter(report.DefaultStyles())
	if err := writer.Write(rep, f); err != nil {
		return fmt.Errorf("rendering workbook: %w", err)
	}
	fmt.Printf("Wrote %s (%d hosts)\n", outFile, len(hosts))
	return nil
}
