// Package prometheus collects host utilization summaries from a Prometheus
// endpoint scraping node_exporter, as an alternative to the Zabbix source.
package prometheus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"

	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/source"
)

// Collector implements source.Collector against the Prometheus HTTP API.
type Collector struct {
	api     promv1.API
	timeout time.Duration
	step    time.Duration
}

// Option configures the collector.
type Option func(*Collector)

// WithTimeout sets the query timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) { c.timeout = d }
}

// WithStep sets the resolution of the window subqueries.
func WithStep(d time.Duration) Option {
	return func(c *Collector) { c.step = d }
}

// NewCollector creates a collector connected to the given endpoint.
func NewCollector(endpoint string, opts ...Option) (*Collector, error) {
	client, err := promapi.NewClient(promapi.Config{Address: endpoint})
	if err != nil {
		return nil, fmt.Errorf("creating prometheus client: %w", err)
	}

	c := &Collector{
		api:     promv1.NewAPI(client),
		timeout: 60 * time.Second,
		step:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Collector) BackendType() string { return "prometheus" }

// Ping checks connectivity with a trivial query.
func (c *Collector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := c.api.Query(ctx, "up", time.Now()); err != nil {
		return fmt.Errorf("%w: %v", source.ErrUnreachable, err)
	}
	return nil
}

// Collect runs the min/max/avg utilization queries in parallel and shapes
// the answers into per-host records.
func (c *Collector) Collect(ctx context.Context, opts source.Options) ([]model.HostMetrics, error) {
	window := formatDuration(opts.Till.Sub(opts.From))
	step := formatDuration(c.step)

	queries := map[string]string{
		"cpu_min": queryCPU("min", window, step),
		"cpu_max": queryCPU("max", window, step),
		"cpu_avg": queryCPU("avg", window, step),
		"mem_min": queryMemory("min", window, step),
		"mem_max": queryMemory("max", window, step),
		"mem_avg": queryMemory("avg", window, step),
	}

	type queryResult struct {
		name string
		data prommodel.Value
		err  error
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make(chan queryResult, len(queries))
	for name, q := range queries {
		go func(n, query string) {
			data, _, err := c.api.Query(queryCtx, query, opts.Till)
			results <- queryResult{name: n, data: data, err: err}
		}(name, q)
	}

	collected := make(map[string]map[string]float64)
	var errs []string
	for i := 0; i < len(queries); i++ {
		r := <-results
		if r.err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.name, r.err))
			continue
		}
		collected[r.name] = extractVector(r.data)
	}

	hosts := c.buildHosts(collected, opts)
	if len(hosts) == 0 {
		detail := ""
		if len(errs) > 0 {
			detail = "; query errors: " + strings.Join(errs, ", ")
		}
		return nil, fmt.Errorf("%w%s", source.ErrNoData, detail)
	}
	return hosts, nil
}

func (c *Collector) buildHosts(data map[string]map[string]float64, opts source.Options) []model.HostMetrics {
	instances := make(map[string]bool)
	for _, vec := range data {
		for inst := range vec {
			instances[inst] = true
		}
	}

	names := make([]string, 0, len(instances))
	for inst := range instances {
		names = append(names, inst)
	}
	sort.Strings(names)

	samples := 0
	if c.step > 0 {
		samples = int(opts.Till.Sub(opts.From) / c.step)
	}

	var hosts []model.HostMetrics
	for _, inst := range names {
		host := hostName(inst)
		hm := model.HostMetrics{Host: host}

		if avg, ok := data["cpu_avg"][inst]; ok {
			hm.Records = append(hm.Records, utilizationRecord(host, "CPU utilization",
				data["cpu_min"][inst], data["cpu_max"][inst], avg, samples))
		}
		if avg, ok := data["mem_avg"][inst]; ok {
			hm.Records = append(hm.Records, utilizationRecord(host, "Memory utilization",
				data["mem_min"][inst], data["mem_max"][inst], avg, samples))
		}

		if len(hm.Records) > 0 {
			hosts = append(hosts, hm)
		}
	}
	return hosts
}

func utilizationRecord(host, name string, minVal, maxVal, avg float64, samples int) model.MetricRecord {
	return model.MetricRecord{
		Host:    host,
		Name:    name,
		Min:     minVal,
		Max:     maxVal,
		Avg:     fmt.Sprintf("%.2f", avg),
		Samples: samples,
		Unit:    "%",
	}
}

// extractVector converts a query result to an instance -> value map.
func extractVector(v prommodel.Value) map[string]float64 {
	result := make(map[string]float64)
	vec, ok := v.(prommodel.Vector)
	if !ok {
		return result
	}
	for _, sample := range vec {
		inst := string(sample.Metric["instance"])
		if inst == "" {
			continue
		}
		result[inst] = float64(sample.Value)
	}
	return result
}

// hostName strips the scrape port from an instance label.
func hostName(instance string) string {
	if i := strings.LastIndex(instance, ":"); i > 0 {
		return instance[:i]
	}
	return instance
}

// formatDuration renders a duration as a PromQL duration literal.
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%dd", hours/24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	minutes := int(d.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
