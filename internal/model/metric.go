package model

import (
	"strconv"
	"strings"
)

// Category is the classification bucket for a metric name.
type Category int

const (
	CategoryOther Category = iota
	CategoryCPUUtil
	CategoryMemUtil
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryCPUUtil:
		return "cpu_util"
	case CategoryMemUtil:
		return "mem_util"
	default:
		return "other"
	}
}

// MetricRecord is one (host, metric) statistical summary for the reporting
// period. Avg is kept as the raw string so non-numeric values (for example
// "N/A") survive untouched in listings while being excluded from aggregates.
type MetricRecord struct {
	Host    string
	Name    string
	Min     float64
	Max     float64
	Avg     string
	Samples int
	Unit    string
}

// AvgValue parses the raw average. The second return is false when the value
// is not numeric.
func (r MetricRecord) AvgValue() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Avg), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HostMetrics is the ordered metric summary sequence collected for one host.
type HostMetrics struct {
	Host    string
	Records []MetricRecord
}

// Flatten concatenates per-host records into a single slice, preserving the
// per-host input order. Downstream ranking relies on this order for tie
// breaking.
func Flatten(hosts []HostMetrics) []MetricRecord {
	var out []MetricRecord
	for _, h := range hosts {
		out = append(out, h.Records...)
	}
	return out
}

// HostName derives the display name for a metric source identifier by
// stripping the given suffix (typically ".csv").
func HostName(source, suffix string) string {
	return strings.TrimSuffix(source, suffix)
}
