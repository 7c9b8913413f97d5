package cmd

import (
	"context"
	"fmt"

	"github.com/sebas80sebas/zabreport/internal/config"
	"github.com/sebas80sebas/zabreport/internal/notify"
	"github.com/sebas80sebas/zabreport/internal/pipeline"
	"github.com/sebas80sebas/zabreport/internal/prometheus"
	"github.com/sebas80sebas/zabreport/internal/source"
	"github.com/sebas80sebas/zabreport/internal/storage"
	"github.com/sebas80sebas/zabreport/internal/zabbix"
)

// resolveCollector builds the metrics collector for one tenant's backend
// connection.
func resolveCollector(zb config.ZabbixConfig) (source.Collector, error) {
	switch cfg.Source.Backend {
	case "zabbix":
		if zb.URL == "" {
			return nil, fmt.Errorf("zabbix.url is required for the zabbix backend")
		}
		client := zabbix.NewClient(zb.URL, zabbix.WithTimeout(zb.Timeout))
		return zabbix.NewCollector(client, zb.User, zb.Password, log), nil
	case "prometheus":
		if cfg.Prometheus.URL == "" {
			return nil, fmt.Errorf("prometheus.url is required for the prometheus backend")
		}
		return prometheus.NewCollector(cfg.Prometheus.URL,
			prometheus.WithTimeout(cfg.Prometheus.Timeout),
			prometheus.WithStep(cfg.Prometheus.Step))
	case "static":
		return source.NewStaticCollector(cfg.Source.Static), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

// resolveTenants materializes the tenant list. With no tenants configured,
// the global zabbix and storage sections act as a single implicit tenant.
func resolveTenants(ctx context.Context) ([]pipeline.Tenant, error) {
	entries := cfg.Tenants
	if len(entries) == 0 {
		entries = []config.TenantConfig{{Name: "default", Bucket: cfg.Storage.Bucket}}
	}

	tenants := make([]pipeline.Tenant, 0, len(entries))
	for _, tc := range entries {
		bucket := tc.Bucket
		if bucket == "" {
			bucket = cfg.Storage.Bucket
		}
		if bucket == "" {
			return nil, fmt.Errorf("tenant %s: no bucket configured", tc.Name)
		}

		collector, err := resolveCollector(cfg.ZabbixFor(tc))
		if err != nil {
			return nil, fmt.Errorf("tenant %s: %w", tc.Name, err)
		}

		store, err := storage.New(ctx, bucket, cfg.Storage.Region, log)
		if err != nil {
			return nil, fmt.Errorf("tenant %s: connecting to storage: %w", tc.Name, err)
		}

		tenants = append(tenants, pipeline.Tenant{
			Name:      tc.Name,
			Collector: collector,
			Store:     store,
		})
	}
	return tenants, nil
}

// newPipeline wires the pipeline with the configured notifier.
func newPipeline() *pipeline.Pipeline {
	notifier := notify.NewTeamsNotifier(cfg.Notify.WebhookURL, log)
	return pipeline.New(cfg, notifier, log)
}
