package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sebas80sebas/zabreport/internal/model"
)

// StaticCollector reads a pre-collected snapshot from a JSON file. Useful
// for offline report generation and tests.
type StaticCollector struct {
	path  string
	hosts []model.HostMetrics
}

type staticHost struct {
	Host    string         `json:"host"`
	Records []staticRecord `json:"records"`
}

type staticRecord struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     string  `json:"avg"`
	Samples int     `json:"samples"`
	Unit    string  `json:"unit"`
}

// NewStaticCollector creates a collector reading from a snapshot file.
func NewStaticCollector(path string) *StaticCollector {
	return &StaticCollector{path: path}
}

// NewStaticCollectorFromHosts wraps an in-memory snapshot.
func NewStaticCollectorFromHosts(hosts []model.HostMetrics) *StaticCollector {
	return &StaticCollector{hosts: hosts}
}

func (s *StaticCollector) BackendType() string { return "static" }

func (s *StaticCollector) Ping(ctx context.Context) error {
	if s.hosts != nil {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

func (s *StaticCollector) Collect(ctx context.Context, opts Options) ([]model.HostMetrics, error) {
	if s.hosts != nil {
		return s.hosts, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var raw []staticHost
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	var hosts []model.HostMetrics
	for _, h := range raw {
		hm := model.HostMetrics{Host: h.Host}
		for _, r := range h.Records {
			hm.Records = append(hm.Records, model.MetricRecord{
				Host:    h.Host,
				Name:    r.Name,
				Min:     r.Min,
				Max:     r.Max,
				Avg:     r.Avg,
				Samples: r.Samples,
				Unit:    r.Unit,
			})
		}
		hosts = append(hosts, hm)
	}

	if len(hosts) == 0 {
		return nil, ErrNoData
	}
	return hosts, nil
}
