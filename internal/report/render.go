package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/sebas80sebas/zabreport/internal/aggregate"
	"github.com/sebas80sebas/zabreport/internal/classify"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
)

// Params configure a render. GeneratedAt is the only time-dependent input;
// rendering the same records with the same params yields an identical
// Report.
type Params struct {
	GeneratedAt    time.Time
	Period         string // reporting period label, e.g. "Last 30 days"
	TopN           int
	Thresholds     rank.Thresholds
	SheetNameLimit int // 0 means DefaultSheetNameLimit
}

// Build renders the full report model: dashboard, flat all-hosts table,
// per-group blocks, and one detail sheet per host. It performs no I/O.
func Build(hosts []model.HostMetrics, idx *hostgroups.Index, p Params) *Report {
	if p.SheetNameLimit <= 0 {
		p.SheetNameLimit = DefaultSheetNameLimit
	}

	// Hosts without any usable record are dropped from every view.
	kept := hosts[:0:0]
	for _, h := range hosts {
		if len(h.Records) > 0 {
			kept = append(kept, h)
		}
	}
	records := model.Flatten(kept)

	agg := aggregate.Aggregate(records, idx, aggregate.Options{
		TopN:       p.TopN,
		Thresholds: p.Thresholds,
	})

	rep := &Report{
		Title:       "ZABBIX MONITORING REPORT",
		GeneratedAt: p.GeneratedAt,
		Period:      p.Period,
	}

	rep.Sheets = append(rep.Sheets, buildDashboard(rep, agg, p))
	rep.Sheets = append(rep.Sheets, buildAllHosts(kept, idx))
	rep.Sheets = append(rep.Sheets, buildGroupSheet(kept, idx, agg))
	for _, sheet := range buildHostSheets(kept, p.SheetNameLimit) {
		rep.Sheets = append(rep.Sheets, sheet)
	}
	return rep
}

// builder appends rows to a sheet while tracking 1-based row numbers so
// chart ranges can reference the cells just written.
type builder struct {
	sheet Sheet
}

func newBuilder(name string) *builder {
	return &builder{sheet: Sheet{Name: name}}
}

// add appends a row and returns its 1-based row number.
func (b *builder) add(cells ...Cell) int {
	b.sheet.Rows = append(b.sheet.Rows, Row{Cells: cells})
	return len(b.sheet.Rows)
}

func (b *builder) blank() {
	b.sheet.Rows = append(b.sheet.Rows, Row{})
}

// attach adds chart descriptors to the given 1-based row.
func (b *builder) attach(row int, charts ...Chart) {
	b.sheet.Rows[row-1].Charts = append(b.sheet.Rows[row-1].Charts, charts...)
}

func str(v string) Cell             { return Cell{Value: v} }
func styled(v any, tag string) Cell { return Cell{Value: v, Style: tag} }
func num(v float64) Cell            { return Cell{Value: v, Style: StyleNumber} }
func gap() Cell                     { return Cell{} }

// avgCell writes the parsed average as a number and keeps the raw string
// untouched when it does not parse.
func avgCell(r model.MetricRecord, style string) Cell {
	if v, ok := r.AvgValue(); ok {
		if style == "" {
			style = StyleNumber
		}
		return Cell{Value: v, Style: style}
	}
	return Cell{Value: r.Avg, Style: style}
}

func buildDashboard(rep *Report, agg aggregate.Result, p Params) Sheet {
	b := newBuilder(SheetDashboard)

	// Title block. Content starts at column B, like the workbook layout
	// operators are used to.
	b.blank()
	b.add(gap(), styled(rep.Title, StyleTitle))
	b.add(gap(), styled("Generated: "+p.GeneratedAt.Format("02/01/2006 15:04"), StyleSubtitle))
	b.blank()

	// Summary counters.
	stats := []struct {
		label string
		value any
	}{
		{"Total Hosts", agg.Global.HostCount},
		{"Total Metrics", agg.Global.MetricCount},
		{"Total Host Groups", agg.Global.GroupCount},
		{"Period", p.Period},
	}
	for _, s := range stats {
		b.add(gap(), styled(s.label, StyleLabel), gap(), str2cell(s.value))
	}
	b.blank()

	b.add(gap(), styled("Global CPU Avg (%)", StyleLabel), gap(), num(agg.Global.AvgCPU))
	b.add(gap(), styled("Global Memory Avg (%)", StyleLabel), gap(), num(agg.Global.AvgMem))
	b.blank()

	addRankingTable(b, fmt.Sprintf("TOP %d CPU HOSTS", p.TopN), "Avg CPU %", agg.Global.TopCPU)
	b.blank()
	addRankingTable(b, fmt.Sprintf("TOP %d MEMORY HOSTS", p.TopN), "Avg Memory %", agg.Global.TopMem)
	b.blank()

	addGroupSummary(b, agg)

	return b.sheet
}

// addRankingTable writes a top-N table and pairs it with a bar chart over
// its host and value columns.
func addRankingTable(b *builder, title, valueHeader string, entries []model.RankEntry) {
	titleRow := b.add(gap(), styled(title, StyleSectionTitle))
	b.add(gap(),
		styled("Host", StyleHeader),
		styled(valueHeader, StyleHeader),
		styled("Groups", StyleHeader),
		styled("Severity", StyleHeader),
	)

	if len(entries) == 0 {
		b.add(gap(), str("No data"))
		return
	}

	first := 0
	for _, e := range entries {
		row := b.add(gap(),
			str(e.Host),
			num(e.Avg),
			str(e.Groups),
			styled(string(e.Band), bandStyle(e.Band)),
		)
		if first == 0 {
			first = row
		}
	}
	last := first + len(entries) - 1

	b.attach(titleRow, Chart{
		Type:       ChartBar,
		Title:      title,
		Categories: Range{Sheet: SheetDashboard, Col: 2, StartRow: first, EndRow: last},
		Series: []Series{
			{Name: valueHeader, Values: Range{Sheet: SheetDashboard, Col: 3, StartRow: first, EndRow: last}},
		},
		XAxis: "Host",
		YAxis: valueHeader,
	})
}

func addGroupSummary(b *builder, agg aggregate.Result) {
	titleRow := b.add(gap(), styled("METRICS BY HOST GROUP (Summary)", StyleSectionTitle))
	b.add(gap(),
		styled("Host Group", StyleHeader),
		styled("Total Hosts", StyleHeader),
		styled("Avg CPU %", StyleHeader),
		styled("Avg Memory %", StyleHeader),
	)

	names := agg.GroupNames()
	if len(names) == 0 {
		b.add(gap(), str("No data"))
		return
	}

	first := 0
	for _, name := range names {
		g := agg.Groups[name]
		row := b.add(gap(), str(g.Group), Cell{Value: g.HostCount}, num(g.AvgCPU), num(g.AvgMem))
		if first == 0 {
			first = row
		}
	}
	last := first + len(names) - 1

	b.attach(titleRow, Chart{
		Type:       ChartBar,
		Title:      "Host Group Averages",
		Categories: Range{Sheet: SheetDashboard, Col: 2, StartRow: first, EndRow: last},
		Series: []Series{
			{Name: "Avg CPU %", Values: Range{Sheet: SheetDashboard, Col: 4, StartRow: first, EndRow: last}},
			{Name: "Avg Memory %", Values: Range{Sheet: SheetDashboard, Col: 5, StartRow: first, EndRow: last}},
		},
		XAxis: "Host Group",
		YAxis: "Average %",
	})
}

func buildAllHosts(hosts []model.HostMetrics, idx *hostgroups.Index) Sheet {
	b := newBuilder(SheetAllHosts)
	b.add(
		styled("Host", StyleHeader),
		styled("Metric", StyleHeader),
		styled("Min", StyleHeader),
		styled("Max", StyleHeader),
		styled("Avg", StyleHeader),
		styled("Unit", StyleHeader),
		styled("Samples", StyleHeader),
		styled("Groups", StyleHeader),
	)

	for _, h := range hosts {
		groups := joinGroups(idx, h.Host)
		for _, r := range h.Records {
			b.add(
				str(h.Host),
				styled(r.Name, categoryStyle(classify.Classify(r.Name))),
				num(r.Min),
				num(r.Max),
				avgCell(r, ""),
				str(r.Unit),
				Cell{Value: r.Samples},
				str(groups),
			)
		}
	}
	return b.sheet
}

func buildGroupSheet(hosts []model.HostMetrics, idx *hostgroups.Index, agg aggregate.Result) Sheet {
	b := newBuilder(SheetByGroups)
	b.add(styled("DETAILED METRICS BY HOST GROUP", StyleSectionTitle))
	b.blank()

	byHost := make(map[string]model.HostMetrics, len(hosts))
	for _, h := range hosts {
		byHost[h.Host] = h
	}

	for _, name := range agg.GroupNames() {
		g := agg.Groups[name]
		b.add(styled(g.Group, StyleGroupHeader))
		b.add(
			styled("Total Hosts:", StyleLabel),
			Cell{Value: g.HostCount},
			gap(),
			styled("Total Metrics:", StyleLabel),
			Cell{Value: g.MetricCount},
		)
		b.blank()
		b.add(
			styled("Host", StyleHeader),
			styled("Metric", StyleHeader),
			styled("Min", StyleHeader),
			styled("Max", StyleHeader),
			styled("Avg", StyleHeader),
			styled("Unit", StyleHeader),
			styled("Samples", StyleHeader),
		)

		for _, host := range groupHostsSorted(hosts, idx, name) {
			for _, r := range byHost[host].Records {
				b.add(
					str(host),
					styled(r.Name, categoryStyle(classify.ClassifyExtended(r.Name))),
					num(r.Min),
					num(r.Max),
					avgCell(r, ""),
					str(r.Unit),
					Cell{Value: r.Samples},
				)
			}
		}
		b.blank()
		b.blank()
	}
	return b.sheet
}

func buildHostSheets(hosts []model.HostMetrics, nameLimit int) []Sheet {
	var sheets []Sheet
	for _, h := range hosts {
		name := truncateLabel(h.Host, nameLimit)
		b := newBuilder(name)
		headerRow := b.add(
			styled("Metric", StyleHeader),
			styled("Min", StyleHeader),
			styled("Max", StyleHeader),
			styled("Avg", StyleHeader),
			styled("Unit", StyleHeader),
			styled("Samples", StyleHeader),
		)

		cpuFirst, cpuLast, memFirst, memLast := 0, 0, 0, 0
		for _, r := range h.Records {
			cat := classify.Classify(r.Name)
			row := b.add(
				styled(r.Name, categoryStyle(cat)),
				num(r.Min),
				num(r.Max),
				avgCell(r, ""),
				str(r.Unit),
				Cell{Value: r.Samples},
			)
			if _, ok := r.AvgValue(); !ok {
				continue
			}
			switch cat {
			case model.CategoryCPUUtil:
				if cpuFirst == 0 {
					cpuFirst = row
				}
				cpuLast = row
			case model.CategoryMemUtil:
				if memFirst == 0 {
					memFirst = row
				}
				memLast = row
			}
		}

		if cpuFirst > 0 {
			b.attach(headerRow, hostLineChart(name, "CPU Utilization", cpuFirst, cpuLast))
		}
		if memFirst > 0 {
			b.attach(headerRow, hostLineChart(name, "Memory Utilization", memFirst, memLast))
		}
		sheets = append(sheets, b.sheet)
	}
	return sheets
}

// hostLineChart charts the Avg column over the metric-name column for a
// category's row span on a host sheet.
func hostLineChart(sheet, title string, first, last int) Chart {
	return Chart{
		Type:       ChartLine,
		Title:      title,
		Categories: Range{Sheet: sheet, Col: 1, StartRow: first, EndRow: last},
		Series: []Series{
			{Name: "Avg", Values: Range{Sheet: sheet, Col: 4, StartRow: first, EndRow: last}},
		},
		XAxis: "Metric",
		YAxis: "Average",
	}
}

// groupHostsSorted returns the group's observed hosts in lexicographic
// order, preserving only membership from the given records.
func groupHostsSorted(hosts []model.HostMetrics, idx *hostgroups.Index, group string) []string {
	var names []string
	for _, h := range hosts {
		for _, g := range idx.Groups(h.Host) {
			if g == group {
				names = append(names, h.Host)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func joinGroups(idx *hostgroups.Index, host string) string {
	groups := idx.Groups(host)
	out := groups[0]
	for _, g := range groups[1:] {
		out += rank.GroupSeparator + g
	}
	return out
}

func categoryStyle(c model.Category) string {
	switch c {
	case model.CategoryCPUUtil:
		return StyleCPU
	case model.CategoryMemUtil:
		return StyleMem
	default:
		return ""
	}
}

func bandStyle(b model.Band) string {
	switch b {
	case model.BandCritical:
		return StyleCritical
	case model.BandWarning:
		return StyleWarning
	default:
		return StyleNormal
	}
}

// truncateLabel shortens a host name to the sheet-label limit. Collisions
// between truncated names are preserved as-is.
func truncateLabel(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit])
}

func str2cell(v any) Cell {
	if f, ok := v.(float64); ok {
		return num(f)
	}
	return Cell{Value: v}
}
