package aggregate

import (
	"math"
	"testing"

	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
)

func defaultOpts() Options {
	return Options{TopN: 10, Thresholds: rank.DefaultThresholds()}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateScenario(t *testing.T) {
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {"web01": ["prod"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	records := []model.MetricRecord{
		{Host: "web01", Name: "system.cpu.util", Min: 0, Max: 100, Avg: "85.5", Samples: 30, Unit: "%"},
	}

	res := Aggregate(records, idx, defaultOpts())

	if !almostEqual(res.Global.AvgCPU, 85.5) {
		t.Errorf("global AvgCPU = %v, want 85.5", res.Global.AvgCPU)
	}
	prod, ok := res.Groups["prod"]
	if !ok {
		t.Fatal("missing prod rollup")
	}
	if !almostEqual(prod.AvgCPU, 85.5) || prod.HostCount != 1 || prod.MetricCount != 1 {
		t.Errorf("prod rollup = %+v", prod)
	}
	if len(prod.TopCPU) != 1 {
		t.Fatalf("prod TopCPU = %+v", prod.TopCPU)
	}
	e := prod.TopCPU[0]
	if e.Host != "web01" || e.Avg != 85.5 || e.Groups != "prod" || e.Band != model.BandCritical {
		t.Errorf("ranking entry = %+v", e)
	}
}

func TestAggregateZeroQualifyingIsZero(t *testing.T) {
	records := []model.MetricRecord{
		{Host: "a", Name: "net.if.in[eth0]", Avg: "123"},
		{Host: "a", Name: "system.cpu.util", Avg: "N/A"},
	}

	res := Aggregate(records, hostgroups.Empty(), defaultOpts())

	if res.Global.AvgCPU != 0 || res.Global.AvgMem != 0 {
		t.Errorf("averages = %v/%v, want 0/0", res.Global.AvgCPU, res.Global.AvgMem)
	}
	// The unparseable record is still counted in the raw metric total.
	if res.Global.MetricCount != 2 {
		t.Errorf("MetricCount = %d, want 2", res.Global.MetricCount)
	}
}

func TestAggregateMultiGroupFanOut(t *testing.T) {
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {
		"shared": ["A", "B"],
		"only-a": ["A"]
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	records := []model.MetricRecord{
		{Host: "shared", Name: "system.cpu.util", Avg: "90"},
		{Host: "only-a", Name: "system.cpu.util", Avg: "10"},
	}

	res := Aggregate(records, idx, defaultOpts())

	a, b := res.Groups["A"], res.Groups["B"]
	if a == nil || b == nil {
		t.Fatalf("expected rollups for A and B, got %v", res.GroupNames())
	}
	// shared contributes to both rollups independently.
	if !almostEqual(a.AvgCPU, 50) {
		t.Errorf("A AvgCPU = %v, want 50", a.AvgCPU)
	}
	if !almostEqual(b.AvgCPU, 90) {
		t.Errorf("B AvgCPU = %v, want 90", b.AvgCPU)
	}
	if a.HostCount != 2 || b.HostCount != 1 {
		t.Errorf("host counts = %d/%d, want 2/1", a.HostCount, b.HostCount)
	}
	// Global average is not fanned out: each record counted once.
	if !almostEqual(res.Global.AvgCPU, 50) {
		t.Errorf("global AvgCPU = %v, want 50", res.Global.AvgCPU)
	}
}

func TestAggregateUnknownGroupCollectsEveryone(t *testing.T) {
	records := []model.MetricRecord{
		{Host: "h1", Name: "system.cpu.util", Avg: "10"},
		{Host: "h2", Name: "system.cpu.util", Avg: "20"},
		{Host: "h3", Name: "system.cpu.util", Avg: "30"},
	}

	res := Aggregate(records, hostgroups.Empty(), defaultOpts())

	if len(res.Groups) != 1 {
		t.Fatalf("expected single Unknown group, got %v", res.GroupNames())
	}
	unknown := res.Groups[hostgroups.DefaultGroup]
	if unknown == nil || unknown.HostCount != 3 {
		t.Errorf("Unknown rollup = %+v", unknown)
	}
}

func TestAggregateGroupUsesExtendedMemRule(t *testing.T) {
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {"db01": ["prod"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	records := []model.MetricRecord{
		{Host: "db01", Name: "vm.memory.utilization", Avg: "40"},
		{Host: "db01", Name: "Memory total", Avg: "80"},
	}

	res := Aggregate(records, idx, defaultOpts())

	// Globally only the utilization metric qualifies as memory.
	if !almostEqual(res.Global.AvgMem, 40) {
		t.Errorf("global AvgMem = %v, want 40", res.Global.AvgMem)
	}
	// The group table also counts the total metric.
	if !almostEqual(res.Groups["prod"].AvgMem, 60) {
		t.Errorf("prod AvgMem = %v, want 60", res.Groups["prod"].AvgMem)
	}
}

func TestAggregateHostCountFromRecords(t *testing.T) {
	// Group doc declares hosts that never produced records; only observed
	// hosts count.
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {
		"seen": ["prod"],
		"never-seen": ["prod"]
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	records := []model.MetricRecord{
		{Host: "seen", Name: "system.cpu.util", Avg: "10"},
	}

	res := Aggregate(records, idx, defaultOpts())

	if res.Groups["prod"].HostCount != 1 {
		t.Errorf("HostCount = %d, want 1", res.Groups["prod"].HostCount)
	}
}
