// Package pipeline coordinates the end-to-end flow for one tenant: collect
// metric summaries, stage them as per-host CSV blobs, render the workbook,
// upload it, and announce the download links.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sebas80sebas/zabreport/internal/config"
	"github.com/sebas80sebas/zabreport/internal/export"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/notify"
	"github.com/sebas80sebas/zabreport/internal/rank"
	"github.com/sebas80sebas/zabreport/internal/report"
	"github.com/sebas80sebas/zabreport/internal/source"
	"github.com/sebas80sebas/zabreport/internal/storage"
)

// BlobStore is the storage surface the pipeline needs.
type BlobStore interface {
	Bucket() string
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	HostCSVs(ctx context.Context) ([]storage.Object, error)
	Reports(ctx context.Context, onlyLatest bool) ([]storage.Object, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Notifier announces finished reports.
type Notifier interface {
	Enabled() bool
	SendAll(ctx context.Context, n notify.Notice, languages []string)
}

// Tenant is one monitored account with its collector and blob store.
type Tenant struct {
	Name      string
	Collector source.Collector
	Store     BlobStore
}

// Pipeline runs the export and report stages for any number of tenants.
type Pipeline struct {
	cfg      config.Config
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New creates a pipeline. The notifier may be nil when notifications are
// not configured.
func New(cfg config.Config, notifier Notifier, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Export collects summaries from the tenant's backend and uploads one CSV
// per host.
func (p *Pipeline) Export(ctx context.Context, t Tenant) (int, error) {
	log := p.log.With("tenant", t.Name)
	till := p.now()
	opts := source.Options{
		From: till.AddDate(0, 0, -p.cfg.Report.PeriodDays),
		Till: till,
	}

	exporter := export.NewExporter(t.Collector, t.Store, log)
	n, err := exporter.Run(ctx, opts)
	if err != nil {
		return n, fmt.Errorf("tenant %s: exporting metrics: %w", t.Name, err)
	}
	log.Info("export finished", "backend", t.Collector.BackendType(), "hosts", n)
	return n, nil
}

// Report builds the workbook from the staged CSV blobs and uploads it,
// returning the blob key of the uploaded report.
func (p *Pipeline) Report(ctx context.Context, t Tenant) (string, error) {
	log := p.log.With("tenant", t.Name)

	hosts, err := p.loadHosts(ctx, t.Store, log)
	if err != nil {
		return "", fmt.Errorf("tenant %s: %w", t.Name, err)
	}
	if len(hosts) == 0 {
		return "", fmt.Errorf("tenant %s: no host data staged in bucket %s", t.Name, t.Store.Bucket())
	}

	idx := p.loadGroups(ctx, t.Store, log)

	generated := p.now()
	rep := report.Build(hosts, idx, report.Params{
		GeneratedAt: generated,
		Period:      fmt.Sprintf("Last %d days", p.cfg.Report.PeriodDays),
		TopN:        p.cfg.Report.TopN,
		Thresholds: rank.Thresholds{
			Critical: p.cfg.Report.Bands.Critical,
			Warning:  p.cfg.Report.Bands.Warning,
		},
	})

	var buf bytes.Buffer
	writer := report.NewExcelWriter(report.DefaultStyles())
	if err := writer.Write(rep, &buf); err != nil {
		return "", fmt.Errorf("tenant %s: rendering workbook: %w", t.Name, err)
	}

	key := fmt.Sprintf("Zabbix_Report_%s.xlsx", generated.UTC().Format("20060102_150405"))
	const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := t.Store.Put(ctx, key, buf.Bytes(), xlsxContentType); err != nil {
		return "", fmt.Errorf("tenant %s: uploading report: %w", t.Name, err)
	}
	log.Info("report uploaded", "key", key, "hosts", len(hosts), "bytes", buf.Len())
	return key, nil
}

// Notify presigns the stored reports and posts download links.
func (p *Pipeline) Notify(ctx context.Context, t Tenant) error {
	if p.notifier == nil || !p.notifier.Enabled() {
		p.log.Info("notifications not configured, skipping", "tenant", t.Name)
		return nil
	}

	objs, err := t.Store.Reports(ctx, p.cfg.Notify.OnlyLatest)
	if err != nil {
		return fmt.Errorf("tenant %s: listing reports: %w", t.Name, err)
	}
	if len(objs) == 0 {
		return fmt.Errorf("tenant %s: no reports to announce", t.Name)
	}

	expiry := time.Duration(p.cfg.Notify.ExpiryHours) * time.Hour
	files := make([]notify.FileLink, 0, len(objs))
	for _, obj := range objs {
		url, err := t.Store.PresignGet(ctx, obj.Key, expiry)
		if err != nil {
			return fmt.Errorf("tenant %s: presigning %s: %w", t.Name, obj.Key, err)
		}
		files = append(files, notify.FileLink{Name: path.Base(obj.Key), URL: url})
	}

	now := p.now()
	p.notifier.SendAll(ctx, notify.Notice{
		Account:     t.Name,
		Bucket:      t.Store.Bucket(),
		GeneratedAt: now,
		ExpiresAt:   now.Add(expiry),
		ExpiryHours: p.cfg.Notify.ExpiryHours,
		Files:       files,
	}, p.cfg.Notify.Languages)
	return nil
}

// Run executes the full flow for one tenant.
func (p *Pipeline) Run(ctx context.Context, t Tenant) error {
	if _, err := p.Export(ctx, t); err != nil {
		return err
	}
	if _, err := p.Report(ctx, t); err != nil {
		return err
	}
	return p.Notify(ctx, t)
}

// RunAll processes every tenant concurrently. A failing tenant never stops
// the others; the combined error carries one entry per failed tenant.
func (p *Pipeline) RunAll(ctx context.Context, tenants []Tenant) error {
	var g errgroup.Group
	errs := make([]error, len(tenants))

	for i, t := range tenants {
		i, t := i, t
		g.Go(func() error {
			if err := p.Run(ctx, t); err != nil {
				p.log.Error("tenant run failed", "tenant", t.Name, "error", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// loadHosts reads every staged per-host CSV. A blob that fails to download
// or decode drops only that host from the report.
func (p *Pipeline) loadHosts(ctx context.Context, store BlobStore, log *slog.Logger) ([]model.HostMetrics, error) {
	objs, err := store.HostCSVs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing host data: %w", err)
	}

	hosts := make([]model.HostMetrics, 0, len(objs))
	for _, obj := range objs {
		host := strings.TrimSuffix(path.Base(obj.Key), ".csv")
		data, err := store.Get(ctx, obj.Key)
		if err != nil {
			log.Warn("skipping host, download failed", "host", host, "key", obj.Key, "error", err)
			continue
		}
		hm, err := export.DecodeCSV(host, data)
		if err != nil {
			log.Warn("skipping host, data unreadable", "host", host, "error", err)
			continue
		}
		hosts = append(hosts, hm)
	}
	return hosts, nil
}

// loadGroups fetches the optional group document; any failure degrades to
// the default grouping.
func (p *Pipeline) loadGroups(ctx context.Context, store BlobStore, log *slog.Logger) *hostgroups.Index {
	data, err := store.Get(ctx, hostgroups.DocumentBlob)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("host group document unavailable", "error", err)
		}
		return hostgroups.Load(nil, log)
	}
	return hostgroups.Load(data, log)
}
