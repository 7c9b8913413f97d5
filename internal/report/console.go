package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sebas80sebas/zabreport/internal/aggregate"
)

// SummaryWriter formats an aggregate rollup for a terminal or a file,
// without building the full workbook.
type SummaryWriter interface {
	Summarize(agg aggregate.Result, meta SummaryMeta) error
}

// SummaryMeta contains contextual metadata for the summary.
type SummaryMeta struct {
	Account     string
	Backend     string
	CollectedAt time.Time
	Period      string
}

// NewSummaryWriter creates a summary writer for the given format writing
// to w.
func NewSummaryWriter(format string, w io.Writer) SummaryWriter {
	switch format {
	case "json":
		return &jsonSummary{w: w}
	default:
		return &tableSummary{w: w}
	}
}

type tableSummary struct {
	w io.Writer
}

func (r *tableSummary) Summarize(agg aggregate.Result, meta SummaryMeta) error {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "ZabReport Host Summary\n")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Account:    %s\n", meta.Account)
	fmt.Fprintf(r.w, "Backend:    %s\n", meta.Backend)
	fmt.Fprintf(r.w, "Period:     %s\n", meta.Period)
	fmt.Fprintf(r.w, "Collected:  %s\n", meta.CollectedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))

	g := agg.Global
	fmt.Fprintf(r.w, "Hosts:      %d\n", g.HostCount)
	fmt.Fprintf(r.w, "Metrics:    %d\n", g.MetricCount)
	fmt.Fprintf(r.w, "Groups:     %d\n", g.GroupCount)
	fmt.Fprintf(r.w, "Avg CPU:    %.2f%%\n", g.AvgCPU)
	fmt.Fprintf(r.w, "Avg Memory: %.2f%%\n\n", g.AvgMem)

	if len(g.TopCPU) > 0 {
		fmt.Fprintf(r.w, "Top CPU hosts:\n")
		for i, e := range g.TopCPU {
			fmt.Fprintf(r.w, "  #%-2d %-30s %7.2f%%  [%s]\n", i+1, e.Host, e.Avg, e.Band)
		}
		fmt.Fprintf(r.w, "\n")
	}
	if len(g.TopMem) > 0 {
		fmt.Fprintf(r.w, "Top memory hosts:\n")
		for i, e := range g.TopMem {
			fmt.Fprintf(r.w, "  #%-2d %-30s %7.2f%%  [%s]\n", i+1, e.Host, e.Avg, e.Band)
		}
		fmt.Fprintf(r.w, "\n")
	}

	names := agg.GroupNames()
	if len(names) == 0 {
		return nil
	}

	fmt.Fprintf(r.w, "%-25s %6s %8s %8s %8s\n", "Group", "Hosts", "Metrics", "CPU%", "Mem%")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 60))
	for _, name := range names {
		gr := agg.Groups[name]
		label := gr.Group
		if len(label) > 25 {
			label = label[:22] + "..."
		}
		fmt.Fprintf(r.w, "%-25s %6d %8d %7.2f%% %7.2f%%\n",
			label, gr.HostCount, gr.MetricCount, gr.AvgCPU, gr.AvgMem)
	}
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("-", 60))
	return nil
}

type jsonSummary struct {
	w io.Writer
}

type jsonSummaryOutput struct {
	Meta    SummaryMeta      `json:"meta"`
	Rollups aggregate.Result `json:"rollups"`
}

func (r *jsonSummary) Summarize(agg aggregate.Result, meta SummaryMeta) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonSummaryOutput{Meta: meta, Rollups: agg}); err != nil {
		return fmt.Errorf("encoding JSON summary: %w", err)
	}
	return nil
}
