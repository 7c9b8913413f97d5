// Package hostgroups resolves host names to host-group memberships from an
// optional JSON document stored next to the metric blobs.
package hostgroups

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// DefaultGroup is the membership returned for hosts without an entry, and
// for every host when no group document is available.
const DefaultGroup = "Unknown"

// DocumentBlob is the well-known blob name for the group document. The
// leading underscore keeps it out of the per-host CSV listing.
const DocumentBlob = "_hostgroups_info.json"

type document struct {
	HostToGroups map[string][]string `json:"host_to_groups"`
	Groups       map[string]any      `json:"groups"`
}

// Index is the host -> group-membership lookup. Lookups never return an
// empty set; hosts without a membership resolve to {DefaultGroup}.
// Matching is case-sensitive and exact.
type Index struct {
	hostToGroups map[string][]string
}

// Empty returns an index where every host resolves to the default group.
func Empty() *Index {
	return &Index{hostToGroups: map[string][]string{}}
}

// Parse builds an index from the raw group document.
func Parse(data []byte) (*Index, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing host group document: %w", err)
	}

	idx := Empty()
	for host, groups := range doc.HostToGroups {
		if len(groups) == 0 {
			continue
		}
		idx.hostToGroups[host] = groups
	}
	return idx, nil
}

// Load parses the group document, degrading to the empty index when the
// document is missing or malformed. The degradation is informational, not
// an error; the report is still produced with every host in DefaultGroup.
func Load(data []byte, log *slog.Logger) *Index {
	if log == nil {
		log = slog.Default()
	}
	if len(data) == 0 {
		log.Info("no host group document found, continuing without group data")
		return Empty()
	}
	idx, err := Parse(data)
	if err != nil {
		log.Info("host group document unreadable, continuing without group data", "error", err)
		return Empty()
	}
	return idx
}

// Groups returns the group memberships for a host. The result is never
// empty.
func (ix *Index) Groups(host string) []string {
	if groups, ok := ix.hostToGroups[host]; ok {
		return groups
	}
	return []string{DefaultGroup}
}

// Len reports the number of hosts with explicit memberships.
func (ix *Index) Len() int {
	return len(ix.hostToGroups)
}
