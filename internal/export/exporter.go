package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sebas80sebas/zabreport/internal/source"
)

// BlobPutter is the storage surface the exporter needs.
type BlobPutter interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Exporter collects metric summaries and uploads one CSV blob per host.
type Exporter struct {
	collector source.Collector
	store     BlobPutter
	log       *slog.Logger
}

// NewExporter wires a collector to a store.
func NewExporter(collector source.Collector, store BlobPutter, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{collector: collector, store: store, log: log}
}

// Run collects the window and uploads the per-host CSVs. It returns the
// number of hosts uploaded.
func (e *Exporter) Run(ctx context.Context, opts source.Options) (int, error) {
	if err := e.store.EnsureBucket(ctx); err != nil {
		return 0, err
	}

	hosts, err := e.collector.Collect(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("collecting from %s: %w", e.collector.BackendType(), err)
	}

	uploaded := 0
	for _, h := range hosts {
		data, err := EncodeCSV(h)
		if err != nil {
			return uploaded, fmt.Errorf("encoding %s: %w", h.Host, err)
		}
		if err := e.store.Put(ctx, h.Host+".csv", data, "text/csv"); err != nil {
			return uploaded, err
		}
		uploaded++
	}

	e.log.Info("metrics exported", "backend", e.collector.BackendType(), "hosts", uploaded)
	return uploaded, nil
}
