package zabbix

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/source"
)

// TargetKeys is the fixed list of item keys exported per host.
var TargetKeys = []string{
	"system.cpu.util",
	"system.cpu.util[,idle]",
	"system.cpu.util[,iowait]",
	"system.cpu.util[,system]",
	"system.cpu.util[,user]",
	"system.cpu.util[,steal]",
	"system.cpu.num",
	"vm.memory.utilization",
	"vm.memory.size[available]",
	"vm.memory.size[pavailable]",
	"vm.memory.size[used]",
	"vm.memory.size[total]",
}

// Collector implements source.Collector on top of the Zabbix API.
type Collector struct {
	client   *Client
	user     string
	password string
	keys     []string
	log      *slog.Logger
}

// NewCollector creates a Zabbix-backed collector. Credentials are used
// lazily on the first collection.
func NewCollector(client *Client, user, password string, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		client:   client,
		user:     user,
		password: password,
		keys:     TargetKeys,
		log:      log,
	}
}

func (c *Collector) BackendType() string { return "zabbix" }

// Ping checks the API answers without authenticating.
func (c *Collector) Ping(ctx context.Context) error {
	if _, err := c.client.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", source.ErrUnreachable, err)
	}
	return nil
}

// Collect logs in and summarizes the target items of every host over the
// window. Items answer from trends when available and fall back to raw
// history; items with neither are skipped, and hosts where every item is
// skipped are dropped.
func (c *Collector) Collect(ctx context.Context, opts source.Options) ([]model.HostMetrics, error) {
	if err := c.client.Login(ctx, c.user, c.password); err != nil {
		return nil, err
	}

	if version, err := c.client.Version(ctx); err == nil {
		c.log.Info("connected to zabbix", "version", version)
	}

	hosts, err := c.client.Hosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing hosts: %w", err)
	}

	var out []model.HostMetrics
	processed := 0
	for _, host := range hosts {
		hm, err := c.collectHost(ctx, host, opts.From, opts.Till)
		if err != nil {
			return nil, fmt.Errorf("host %s: %w", host.Name, err)
		}
		processed++
		if len(hm.Records) == 0 {
			continue
		}
		out = append(out, hm)
	}

	c.log.Info("collection finished", "hosts_processed", processed, "hosts_with_data", len(out))
	if len(out) == 0 {
		return nil, source.ErrNoData
	}
	return out, nil
}

func (c *Collector) collectHost(ctx context.Context, host Host, from, till time.Time) (model.HostMetrics, error) {
	hm := model.HostMetrics{Host: host.Name}

	items, err := c.client.Items(ctx, host.ID, c.keys)
	if err != nil {
		return hm, fmt.Errorf("listing items: %w", err)
	}

	for _, item := range items {
		rec, ok := c.summarizeItem(ctx, item, from, till)
		if !ok {
			continue
		}
		rec.Host = host.Name
		hm.Records = append(hm.Records, rec)
	}
	return hm, nil
}

// summarizeItem computes (min, max, avg, samples) for one item. Trend
// buckets are preferred: min of mins, max of maxes, and a sample-weighted
// mean. When trends are unavailable or empty the raw history is averaged
// instead.
func (c *Collector) summarizeItem(ctx context.Context, item Item, from, till time.Time) (model.MetricRecord, bool) {
	trends, err := c.client.Trends(ctx, item.ID, from, till)
	if err == nil && len(trends) > 0 {
		minVal, maxVal := trends[0].Min, trends[0].Max
		var sum float64
		var count int
		for _, tr := range trends {
			if tr.Min < minVal {
				minVal = tr.Min
			}
			if tr.Max > maxVal {
				maxVal = tr.Max
			}
			sum += tr.Avg * float64(tr.Num)
			count += tr.Num
		}
		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}
		return record(item, minVal, maxVal, avg, len(trends)), true
	}
	if err != nil {
		c.log.Debug("trend query failed, falling back to history", "item", item.Key, "error", err)
	}

	values, err := c.client.History(ctx, item.ID, item.ValueType, from, till)
	if err != nil || len(values) == 0 {
		return model.MetricRecord{}, false
	}

	minVal, maxVal, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += v
	}
	return record(item, minVal, maxVal, sum/float64(len(values)), len(values)), true
}

func record(item Item, minVal, maxVal, avg float64, samples int) model.MetricRecord {
	return model.MetricRecord{
		Name:    item.Name,
		Min:     round2(minVal),
		Max:     round2(maxVal),
		Avg:     fmt.Sprintf("%.2f", avg),
		Samples: samples,
		Unit:    item.Units,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
