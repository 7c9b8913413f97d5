package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Announce stored reports with presigned download links",
	Long: `Lists the Excel reports in each tenant's bucket, generates time-limited
download URLs, and posts them to the configured Teams webhook.`,
	RunE: runNotify,
}

func init() {
	f := notifyCmd.Flags()
	f.Bool("all", false, "announce every stored report, not just the latest")
	f.Int("expiry-hours", 0, "download link validity in hours")

	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if all, _ := cmd.Flags().GetBool("all"); all {
		cfg.Notify.OnlyLatest = false
	}
	if h, _ := cmd.Flags().GetInt("expiry-hours"); cmd.Flags().Changed("expiry-hours") {
		cfg.Notify.ExpiryHours = h
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Notify.WebhookURL == "" {
		return fmt.Errorf("notify.webhook_url is not configured")
	}

	tenants, err := resolveTenants(ctx)
	if err != nil {
		return err
	}

	p := newPipeline()
	for _, t := range tenants {
		if err := p.Notify(ctx, t); err != nil {
			return err
		}
		fmt.Printf("Notified for %s\n", t.Name)
	}
	return nil
}
