// Package report builds the serializer-agnostic report model from metric
// records and turns it into a workbook.
package report

import "time"

// Sheet names for the fixed views. Per-host sheets follow, named after the
// host.
const (
	SheetDashboard = "Dashboard"
	SheetAllHosts  = "All Hosts"
	SheetByGroups  = "By Host Groups"
)

// DefaultSheetNameLimit is the spreadsheet sheet-label length limit. Host
// names longer than this are truncated; two hosts truncating to the same
// label collide into one sheet. See the open questions in DESIGN.md.
const DefaultSheetNameLimit = 31

// Report is the in-memory representation of the final report: an ordered
// list of sheets holding styled cells and chart descriptors. It carries no
// serialization concerns and is a pure function of its inputs.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Period      string
	Sheets      []Sheet
}

// Sheet is an ordered list of rows.
type Sheet struct {
	Name string
	Rows []Row
}

// Row is an ordered list of cells, optionally carrying chart descriptors
// anchored at this row.
type Row struct {
	Cells  []Cell
	Charts []Chart
}

// Cell pairs a value with a style tag. Style tags are resolved by the
// serializer against a StyleConfig; an empty tag means unstyled.
type Cell struct {
	Value any
	Style string
}

// ChartType selects the chart shape.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// Range references a contiguous single-column block of cells. Rows and
// columns are 1-based.
type Range struct {
	Sheet    string
	Col      int
	StartRow int
	EndRow   int
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool {
	return r.Sheet == "" && r.Col == 0
}

// Series is one value series of a chart.
type Series struct {
	Name   string
	Values Range
}

// Chart describes a chart to be drawn next to the row it is attached to.
type Chart struct {
	Type       ChartType
	Title      string
	Categories Range
	Series     []Series
	XAxis      string
	YAxis      string
}
