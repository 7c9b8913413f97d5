// Package classify maps metric names to categories using case-insensitive
// substring matching.
//
// The heuristic is deliberately simple and has a known ambiguity: a name
// matching both the CPU and memory rules (for example "cpu util per mem
// bank") is classified as CPU because the CPU rule is checked first. The
// rules are kept as-is for parity with the reports operators already know,
// rather than being replaced with a tokenizer.
package classify

import (
	"strings"

	"github.com/sebas80sebas/zabreport/internal/model"
)

// Classify returns the category for a metric name.
//
// Rules, in order:
//  1. contains "cpu" and ("util" or "usage")           -> CPU utilization
//  2. contains "mem" and ("utilization" or "pavailable") -> memory utilization
//  3. otherwise                                         -> other
func Classify(name string) model.Category {
	lower := strings.ToLower(name)

	if strings.Contains(lower, "cpu") &&
		(strings.Contains(lower, "util") || strings.Contains(lower, "usage")) {
		return model.CategoryCPUUtil
	}
	if strings.Contains(lower, "mem") &&
		(strings.Contains(lower, "utilization") || strings.Contains(lower, "pavailable")) {
		return model.CategoryMemUtil
	}
	return model.CategoryOther
}

// ClassifyExtended is Classify with "total" added to the memory rule, so
// metrics like "Memory total" also count as memory. Group-level tables use
// this variant; the global averages and the All Hosts highlighting use the
// base one.
func ClassifyExtended(name string) model.Category {
	if c := Classify(name); c != model.CategoryOther {
		return c
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "mem") && strings.Contains(lower, "total") {
		return model.CategoryMemUtil
	}
	return model.CategoryOther
}
