// Package sync implements the incremental replication pipeline: exclusion
// filtering, change selection against a persistent checkpoint, sequential
// batched import, and the engine that composes them into one run.
package sync

import (
	"strings"

	"github.com/scrapsync/scrapsync/internal/scrapbox"
)

// DefaultExcludeMarker is the line token that marks a page as private.
// Pages carrying it anywhere in their text are never replicated.
const DefaultExcludeMarker = "[private.icon]"

// Filter decides, per page, whether it is eligible for replication.
// It is a denylist marker check, not a schema validation.
type Filter struct {
	marker string
}

// NewFilter creates a Filter for the given marker substring. An empty
// marker falls back to DefaultExcludeMarker.
func NewFilter(marker string) *Filter {
	if marker == "" {
		marker = DefaultExcludeMarker
	}

	return &Filter{marker: marker}
}

// IsExcluded reports whether any line of the page contains the marker.
// The scan short-circuits on the first match.
func (f *Filter) IsExcluded(p scrapbox.Page) bool {
	for _, line := range p.Lines {
		if strings.Contains(line.Text, f.marker) {
			return true
		}
	}

	return false
}

// Apply returns the pages eligible for replication, preserving input order.
func (f *Filter) Apply(pages []scrapbox.Page) []scrapbox.Page {
	eligible := make([]scrapbox.Page, 0, len(pages))

	for _, p := range pages {
		if !f.IsExcluded(p) {
			eligible = append(eligible, p)
		}
	}

	return eligible
}
