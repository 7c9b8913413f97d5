package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sebas80sebas/zabreport/internal/aggregate"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
)

func summaryFixture() (aggregate.Result, SummaryMeta) {
	records := []model.MetricRecord{
		{Host: "web01", Name: "CPU utilization", Avg: "85.50"},
		{Host: "web01", Name: "Memory utilization", Avg: "44.20"},
		{Host: "db01", Name: "CPU utilization", Avg: "30.00"},
	}
	agg := aggregate.Aggregate(records, hostgroups.Empty(), aggregate.Options{
		TopN:       5,
		Thresholds: rank.DefaultThresholds(),
	})
	meta := SummaryMeta{
		Account:     "default",
		Backend:     "static",
		CollectedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Period:      "Last 30 days",
	}
	return agg, meta
}

func TestTableSummary(t *testing.T) {
	agg, meta := summaryFixture()
	var buf bytes.Buffer
	if err := NewSummaryWriter("table", &buf).Summarize(agg, meta); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Hosts:      2", "Avg CPU:    57.75%", "web01", "critical", "Unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONSummary(t *testing.T) {
	agg, meta := summaryFixture()
	var buf bytes.Buffer
	if err := NewSummaryWriter("json", &buf).Summarize(agg, meta); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var out struct {
		Meta    SummaryMeta `json:"meta"`
		Rollups struct {
			Global model.GlobalRollup
		} `json:"rollups"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if out.Meta.Account != "default" {
		t.Errorf("meta.Account = %q", out.Meta.Account)
	}
	if out.Rollups.Global.HostCount != 2 {
		t.Errorf("HostCount = %d, want 2", out.Rollups.Global.HostCount)
	}
	if out.Rollups.Global.AvgCPU != 57.75 {
		t.Errorf("AvgCPU = %v, want 57.75", out.Rollups.Global.AvgCPU)
	}
}
