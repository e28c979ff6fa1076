package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapsync/scrapsync/internal/config"
	"github.com/scrapsync/scrapsync/internal/scrapbox"
	"github.com/scrapsync/scrapsync/internal/sync"
)

// vpage builds a test page with a single text line.
func vpage(title string, updated int64, text string) scrapbox.Page {
	return scrapbox.Page{
		Title:   title,
		Updated: updated,
		Lines:   []scrapbox.Line{{Text: text}},
	}
}

func TestCompareExports(t *testing.T) {
	t.Parallel()

	cfg := &config.Resolved{SourceProject: "src", DestProject: "dst"}
	filter := sync.NewFilter("")

	src := &scrapbox.Export{Pages: []scrapbox.Page{
		vpage("synced", 100, "text"),
		vpage("missing", 200, "text"),
		vpage("stale", 300, "text"),
		vpage("private", 400, "[private.icon] hidden"),
	}}

	dst := &scrapbox.Export{Pages: []scrapbox.Page{
		vpage("synced", 100, "text"),
		vpage("stale", 250, "text"),
	}}

	report := compareExports(cfg, filter, src, dst)

	// The private page is not checked at all: it must never replicate,
	// so its absence at the destination is correct.
	assert.Equal(t, 3, report.PagesChecked)
	assert.Equal(t, []string{"missing"}, report.Missing)
	assert.Equal(t, []string{"stale"}, report.Stale)
}

func TestCompareExports_NormalizesTitles(t *testing.T) {
	t.Parallel()

	cfg := &config.Resolved{SourceProject: "src", DestProject: "dst"}
	filter := sync.NewFilter("")

	// Precomposed e-acute at the source, "e" plus combining accent at the
	// destination. Same page either way.
	src := &scrapbox.Export{Pages: []scrapbox.Page{vpage("caf\u00e9", 100, "text")}}
	dst := &scrapbox.Export{Pages: []scrapbox.Page{vpage("cafe\u0301", 100, "text")}}

	report := compareExports(cfg, filter, src, dst)

	require.Equal(t, 1, report.PagesChecked)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Stale)
}

func TestCompareExports_DestAheadIsNotStale(t *testing.T) {
	t.Parallel()

	cfg := &config.Resolved{SourceProject: "src", DestProject: "dst"}
	filter := sync.NewFilter("")

	src := &scrapbox.Export{Pages: []scrapbox.Page{vpage("page", 100, "text")}}
	dst := &scrapbox.Export{Pages: []scrapbox.Page{vpage("page", 150, "text")}}

	report := compareExports(cfg, filter, src, dst)

	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Stale)
}
