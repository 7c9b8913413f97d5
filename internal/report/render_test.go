package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
)

func testParams() Params {
	return Params{
		GeneratedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Period:      "Last 30 days",
		TopN:        10,
		Thresholds:  rank.DefaultThresholds(),
	}
}

func testHosts() []model.HostMetrics {
	return []model.HostMetrics{
		{Host: "web01", Records: []model.MetricRecord{
			{Host: "web01", Name: "system.cpu.util", Min: 0, Max: 100, Avg: "85.5", Samples: 30, Unit: "%"},
			{Host: "web01", Name: "vm.memory.utilization", Min: 10, Max: 70, Avg: "44.2", Samples: 30, Unit: "%"},
		}},
		{Host: "db01", Records: []model.MetricRecord{
			{Host: "db01", Name: "system.cpu.util", Min: 0, Max: 50, Avg: "N/A", Samples: 0, Unit: "%"},
			{Host: "db01", Name: "system.cpu.num", Min: 8, Max: 8, Avg: "8", Samples: 30, Unit: ""},
		}},
	}
}

func testIndex(t *testing.T) *hostgroups.Index {
	t.Helper()
	idx, err := hostgroups.Parse([]byte(`{"host_to_groups": {"web01": ["prod"], "db01": ["prod", "db"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func findSheet(t *testing.T, rep *Report, name string) Sheet {
	t.Helper()
	for _, s := range rep.Sheets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sheet %q not found in %v", name, sheetNames(rep))
	return Sheet{}
}

func sheetNames(rep *Report) []string {
	var names []string
	for _, s := range rep.Sheets {
		names = append(names, s.Name)
	}
	return names
}

func TestBuildSheetOrder(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())

	want := []string{SheetDashboard, SheetAllHosts, SheetByGroups, "web01", "db01"}
	if got := sheetNames(rep); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet order = %v, want %v", got, want)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(testHosts(), testIndex(t), testParams())
	b := Build(testHosts(), testIndex(t), testParams())

	if !reflect.DeepEqual(a, b) {
		t.Error("rendering the same input twice produced different reports")
	}
}

func TestBuildSkipsEmptyHosts(t *testing.T) {
	hosts := append(testHosts(), model.HostMetrics{Host: "silent"})
	rep := Build(hosts, testIndex(t), testParams())

	for _, name := range sheetNames(rep) {
		if name == "silent" {
			t.Error("host with no records should not get a sheet")
		}
	}
}

func TestAllHostsKeepsRawAvg(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())
	sheet := findSheet(t, rep, SheetAllHosts)

	var found bool
	for _, row := range sheet.Rows {
		if len(row.Cells) < 5 {
			continue
		}
		if row.Cells[0].Value == "db01" && row.Cells[1].Value == "system.cpu.util" {
			found = true
			if row.Cells[4].Value != "N/A" {
				t.Errorf("Avg cell = %v, want raw N/A", row.Cells[4].Value)
			}
			if row.Cells[1].Style != StyleCPU {
				t.Errorf("metric cell style = %q, want %q", row.Cells[1].Style, StyleCPU)
			}
		}
	}
	if !found {
		t.Fatal("db01 cpu row missing from All Hosts sheet")
	}
}

func TestAllHostsGroupsColumn(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())
	sheet := findSheet(t, rep, SheetAllHosts)

	for _, row := range sheet.Rows[1:] {
		if row.Cells[0].Value == "db01" {
			if row.Cells[7].Value != "prod;db" {
				t.Errorf("Groups column = %v, want prod;db", row.Cells[7].Value)
			}
			return
		}
	}
	t.Fatal("no db01 row")
}

func TestDashboardCharts(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())
	sheet := findSheet(t, rep, SheetDashboard)

	var charts []Chart
	for _, row := range sheet.Rows {
		charts = append(charts, row.Charts...)
	}
	if len(charts) != 3 {
		t.Fatalf("expected 3 dashboard charts (2 rankings + group summary), got %d", len(charts))
	}
	for _, c := range charts {
		if c.Type != ChartBar {
			t.Errorf("dashboard chart %q type = %v, want bar", c.Title, c.Type)
		}
		if c.Categories.StartRow == 0 || c.Categories.EndRow < c.Categories.StartRow {
			t.Errorf("chart %q has invalid categories range %+v", c.Title, c.Categories)
		}
		for _, s := range c.Series {
			if s.Values.StartRow != c.Categories.StartRow || s.Values.EndRow != c.Categories.EndRow {
				t.Errorf("chart %q series range %+v does not match categories %+v", c.Title, s.Values, c.Categories)
			}
		}
	}
}

func TestHostSheetCharts(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())

	// web01 has numeric CPU and memory rows: both line charts.
	web := findSheet(t, rep, "web01")
	if n := len(web.Rows[0].Charts); n != 2 {
		t.Errorf("web01 charts = %d, want 2", n)
	}
	for _, c := range web.Rows[0].Charts {
		if c.Type != ChartLine {
			t.Errorf("host chart type = %v, want line", c.Type)
		}
	}

	// db01's only CPU record has a non-numeric average: no charts.
	db := findSheet(t, rep, "db01")
	if n := len(db.Rows[0].Charts); n != 0 {
		t.Errorf("db01 charts = %d, want 0", n)
	}
}

func TestHostSheetNameTruncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	hosts := []model.HostMetrics{
		{Host: long, Records: []model.MetricRecord{
			{Host: long, Name: "system.cpu.util", Avg: "10", Unit: "%"},
		}},
	}

	rep := Build(hosts, hostgroups.Empty(), testParams())
	last := rep.Sheets[len(rep.Sheets)-1]
	if len([]rune(last.Name)) != DefaultSheetNameLimit {
		t.Errorf("sheet name length = %d, want %d", len([]rune(last.Name)), DefaultSheetNameLimit)
	}
}

func TestGroupSheetHostOrder(t *testing.T) {
	rep := Build(testHosts(), testIndex(t), testParams())
	sheet := findSheet(t, rep, SheetByGroups)

	// Collect the host sequence per group block; consecutive rows for the
	// same host collapse to one entry within their block.
	var blocks [][]string
	for _, row := range sheet.Rows {
		if len(row.Cells) == 1 && row.Cells[0].Style == StyleGroupHeader {
			blocks = append(blocks, nil)
			continue
		}
		if len(blocks) == 0 || len(row.Cells) != 7 || row.Cells[0].Style != "" {
			continue
		}
		h, ok := row.Cells[0].Value.(string)
		if !ok || h == "" {
			continue
		}
		cur := blocks[len(blocks)-1]
		if len(cur) == 0 || cur[len(cur)-1] != h {
			blocks[len(blocks)-1] = append(cur, h)
		}
	}

	// Groups iterate db (db01), then prod (db01 before web01).
	want := [][]string{{"db01"}, {"db01", "web01"}}
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("per-group host order = %v, want %v", blocks, want)
	}
}
