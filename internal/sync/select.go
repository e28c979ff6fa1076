package sync

import "github.com/scrapsync/scrapsync/internal/scrapbox"

// SelectChanges returns the subset of pages whose Updated timestamp is
// strictly greater than since, preserving input order. Strict inequality is
// deliberate: a page whose Updated equals the checkpoint was the maximum of
// a prior successful run and is already replicated.
func SelectChanges(pages []scrapbox.Page, since int64) []scrapbox.Page {
	changed := make([]scrapbox.Page, 0, len(pages))

	for _, p := range pages {
		if p.Updated > since {
			changed = append(changed, p)
		}
	}

	return changed
}

// maxUpdated returns the largest Updated timestamp across pages, or zero
// for an empty slice.
func maxUpdated(pages []scrapbox.Page) int64 {
	var max int64

	for _, p := range pages {
		if p.Updated > max {
			max = p.Updated
		}
	}

	return max
}
