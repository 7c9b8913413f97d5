package model

// Band is a presentation severity label derived from an averaged value. It
// never drives control flow.
type Band string

const (
	BandCritical Band = "critical"
	BandWarning  Band = "warning"
	BandNormal   Band = "normal"
)

// RankEntry is one row of a top-N ranking table.
type RankEntry struct {
	Host   string
	Avg    float64
	Groups string // group names joined with ";"
	Band   Band
}

// GroupRollup holds aggregated averages and counts for one host group.
// A host belonging to several groups contributes to each of them; the
// fan-out is deliberate and not deduplicated.
type GroupRollup struct {
	Group       string
	HostCount   int
	MetricCount int
	AvgCPU      float64
	AvgMem      float64
	TopCPU      []RankEntry
	TopMem      []RankEntry
}

// GlobalRollup holds the report-wide counters and averages shown on the
// dashboard.
type GlobalRollup struct {
	HostCount   int
	MetricCount int
	GroupCount  int
	AvgCPU      float64
	AvgMem      float64
	TopCPU      []RankEntry
	TopMem      []RankEntry
}
