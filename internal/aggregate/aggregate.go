// Package aggregate computes the global and per-group rollups that feed the
// dashboard.
package aggregate

import (
	"sort"

	"github.com/sebas80sebas/zabreport/internal/classify"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/rank"
)

// Options tune the rollup computation.
type Options struct {
	TopN       int
	Thresholds rank.Thresholds
}

// Result is the output of Aggregate.
type Result struct {
	Global model.GlobalRollup
	Groups map[string]*model.GroupRollup
}

// GroupNames returns the group keys in lexicographic order, for
// deterministic iteration.
func (r Result) GroupNames() []string {
	names := make([]string, 0, len(r.Groups))
	for name := range r.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregate walks the records once and produces the global rollup plus one
// rollup per observed group.
//
// Averages are unweighted arithmetic means of the record averages; sample
// counts do not weight them. A record only qualifies when its name
// classifies as CPU or memory and its average parses as a number. A
// category with no qualifying records averages to 0. Hosts in several
// groups contribute to each group independently.
//
// Group membership is what the records show: a group's host count is the
// number of distinct processed hosts mapped to it, not the size of any
// externally declared group.
func Aggregate(records []model.MetricRecord, idx *hostgroups.Index, opts Options) Result {
	res := Result{Groups: make(map[string]*model.GroupRollup)}

	globalHosts := make(map[string]struct{})
	groupHosts := make(map[string]map[string]struct{})
	var globalCPU, globalMem accumulator
	groupCPU := make(map[string]*accumulator)
	groupMem := make(map[string]*accumulator)

	for _, rec := range records {
		globalHosts[rec.Host] = struct{}{}
		res.Global.MetricCount++

		avg, numeric := rec.AvgValue()
		if numeric {
			switch classify.Classify(rec.Name) {
			case model.CategoryCPUUtil:
				globalCPU.add(avg)
			case model.CategoryMemUtil:
				globalMem.add(avg)
			}
		}

		for _, group := range idx.Groups(rec.Host) {
			g, ok := res.Groups[group]
			if !ok {
				g = &model.GroupRollup{Group: group}
				res.Groups[group] = g
				groupHosts[group] = make(map[string]struct{})
				groupCPU[group] = &accumulator{}
				groupMem[group] = &accumulator{}
			}
			groupHosts[group][rec.Host] = struct{}{}
			g.MetricCount++

			if !numeric {
				continue
			}
			// Group tables use the extended variant, which also counts
			// "mem ... total" metrics as memory.
			switch classify.ClassifyExtended(rec.Name) {
			case model.CategoryCPUUtil:
				groupCPU[group].add(avg)
			case model.CategoryMemUtil:
				groupMem[group].add(avg)
			}
		}
	}

	res.Global.HostCount = len(globalHosts)
	res.Global.GroupCount = len(res.Groups)
	res.Global.AvgCPU = globalCPU.mean()
	res.Global.AvgMem = globalMem.mean()
	res.Global.TopCPU = rank.Rank(records, model.CategoryCPUUtil, opts.TopN, idx, opts.Thresholds)
	res.Global.TopMem = rank.Rank(records, model.CategoryMemUtil, opts.TopN, idx, opts.Thresholds)

	for name, g := range res.Groups {
		g.HostCount = len(groupHosts[name])
		g.AvgCPU = groupCPU[name].mean()
		g.AvgMem = groupMem[name].mean()

		scoped := recordsInGroup(records, idx, name)
		g.TopCPU = rank.Rank(scoped, model.CategoryCPUUtil, opts.TopN, idx, opts.Thresholds)
		g.TopMem = rank.Rank(scoped, model.CategoryMemUtil, opts.TopN, idx, opts.Thresholds)
	}

	return res
}

// recordsInGroup filters records to hosts belonging to the given group,
// preserving input order.
func recordsInGroup(records []model.MetricRecord, idx *hostgroups.Index, group string) []model.MetricRecord {
	var out []model.MetricRecord
	for _, rec := range records {
		for _, g := range idx.Groups(rec.Host) {
			if g == group {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// accumulator keeps a running sum for an unweighted mean. mean is 0 when
// nothing was added.
type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a *accumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}
