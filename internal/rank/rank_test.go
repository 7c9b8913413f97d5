package rank

import (
	"fmt"
	"testing"

	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
)

func cpuRecord(host string, avg string) model.MetricRecord {
	return model.MetricRecord{Host: host, Name: "system.cpu.util", Avg: avg, Unit: "%"}
}

func TestRankTopN(t *testing.T) {
	var records []model.MetricRecord
	for i := 0; i < 15; i++ {
		records = append(records, cpuRecord(fmt.Sprintf("host%02d", i), fmt.Sprintf("%d", i*5)))
	}

	got := Rank(records, model.CategoryCPUUtil, 10, hostgroups.Empty(), DefaultThresholds())

	if len(got) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Avg > got[i-1].Avg {
			t.Errorf("entries not non-increasing at %d: %v > %v", i, got[i].Avg, got[i-1].Avg)
		}
	}
	if got[0].Host != "host14" {
		t.Errorf("expected host14 first, got %s", got[0].Host)
	}
}

func TestRankStableTies(t *testing.T) {
	records := []model.MetricRecord{
		cpuRecord("first", "50"),
		cpuRecord("second", "50"),
		cpuRecord("third", "50"),
	}

	got := Rank(records, model.CategoryCPUUtil, 0, hostgroups.Empty(), DefaultThresholds())

	want := []string{"first", "second", "third"}
	for i, w := range want {
		if got[i].Host != w {
			t.Errorf("position %d: got %s, want %s", i, got[i].Host, w)
		}
	}
}

func TestRankSkipsUnparseableAndOtherCategories(t *testing.T) {
	records := []model.MetricRecord{
		cpuRecord("good", "42"),
		cpuRecord("bad", "N/A"),
		{Host: "mem-host", Name: "vm.memory.utilization", Avg: "90"},
		{Host: "other-host", Name: "system.cpu.num", Avg: "8"},
	}

	got := Rank(records, model.CategoryCPUUtil, 10, hostgroups.Empty(), DefaultThresholds())

	if len(got) != 1 || got[0].Host != "good" {
		t.Fatalf("expected only the parseable CPU record, got %+v", got)
	}
}

func TestRankCarriesGroupsAndBand(t *testing.T) {
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {"web01": ["prod"]}}`))
	if err != nil {
		t.Fatal(err)
	}

	got := Rank([]model.MetricRecord{cpuRecord("web01", "85.5")}, model.CategoryCPUUtil, 10, idx, DefaultThresholds())

	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.Host != "web01" || e.Avg != 85.5 || e.Groups != "prod" || e.Band != model.BandCritical {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestBandBoundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		avg  float64
		want model.Band
	}{
		{95, model.BandCritical},
		{80.01, model.BandCritical},
		{80, model.BandWarning},
		{60.5, model.BandWarning},
		{60, model.BandNormal},
		{0, model.BandNormal},
	}
	for _, tt := range tests {
		if got := th.Band(tt.avg); got != tt.want {
			t.Errorf("Band(%v) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}
