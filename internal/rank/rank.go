// Package rank computes top-N "hot host" lists per metric category.
package rank

import (
	"sort"
	"strings"

	"github.com/sebas80sebas/zabreport/internal/classify"
	"github.com/sebas80sebas/zabreport/internal/hostgroups"
	"github.com/sebas80sebas/zabreport/internal/model"
)

// GroupSeparator joins group names in ranking rows and listings.
const GroupSeparator = ";"

// Thresholds define the severity bands applied to averaged values. Bands
// are presentation labels only.
type Thresholds struct {
	Critical float64 // avg strictly above this is critical
	Warning  float64 // avg strictly above this (and not critical) is warning
}

// DefaultThresholds returns the standard 80/60 bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 80, Warning: 60}
}

// Band returns the severity label for an averaged value.
func (t Thresholds) Band(avg float64) model.Band {
	switch {
	case avg > t.Critical:
		return model.BandCritical
	case avg > t.Warning:
		return model.BandWarning
	default:
		return model.BandNormal
	}
}

// Rank returns up to n entries for records of the given category, sorted
// descending by average. Records whose average does not parse are skipped.
// The sort is stable, so ties keep their input encounter order.
func Rank(records []model.MetricRecord, category model.Category, n int, idx *hostgroups.Index, t Thresholds) []model.RankEntry {
	var entries []model.RankEntry
	for _, rec := range records {
		if classify.Classify(rec.Name) != category {
			continue
		}
		avg, ok := rec.AvgValue()
		if !ok {
			continue
		}
		entries = append(entries, model.RankEntry{
			Host:   rec.Host,
			Avg:    avg,
			Groups: strings.Join(idx.Groups(rec.Host), GroupSeparator),
			Band:   t.Band(avg),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Avg > entries[j].Avg
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
