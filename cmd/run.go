package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: export, report, notify",
	Long: `Executes the complete flow for every configured tenant: collect metrics,
stage CSV blobs, build and upload the workbook, and post download links.
Tenants run concurrently; one tenant failing does not stop the others.

With --interval, keeps running on a fixed schedule until interrupted.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Duration("interval", 0, "rerun on this interval (0 = run once)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	tenants, err := resolveTenants(ctx)
	if err != nil {
		return err
	}

	p := newPipeline()

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		return p.RunAll(ctx, tenants)
	}

	fmt.Printf("Running every %s for %d tenant(s), Ctrl-C to stop\n", interval, len(tenants))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.RunAll(ctx, tenants); err != nil {
			log.Error("pipeline run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
