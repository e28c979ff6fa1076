package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrapsync/scrapsync/internal/scrapbox"
)

// page builds a test page with plain text lines.
func page(title string, updated int64, lines ...string) scrapbox.Page {
	p := scrapbox.Page{Title: title, Updated: updated}
	for _, text := range lines {
		p.Lines = append(p.Lines, scrapbox.Line{Text: text})
	}

	return p
}

func TestFilter_IsExcluded(t *testing.T) {
	t.Parallel()

	f := NewFilter("")

	tests := []struct {
		name     string
		page     scrapbox.Page
		excluded bool
	}{
		{"marker on first line", page("a", 1, "[private.icon] secret", "body"), true},
		{"marker on later line", page("b", 1, "title line", "notes [private.icon]"), true},
		{"marker mid-text", page("c", 1, "before [private.icon] after"), true},
		{"no marker", page("d", 1, "just text", "more text"), false},
		{"no lines", page("e", 1), false},
		{"similar but different token", page("f", 1, "[private]"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.excluded, f.IsExcluded(tt.page))
		})
	}
}

func TestFilter_CustomMarker(t *testing.T) {
	t.Parallel()

	f := NewFilter("[do-not-sync]")

	assert.True(t, f.IsExcluded(page("a", 1, "x [do-not-sync]")))
	assert.False(t, f.IsExcluded(page("b", 1, "x [private.icon]")))
}

func TestFilter_Apply_PreservesOrder(t *testing.T) {
	t.Parallel()

	f := NewFilter("")

	pages := []scrapbox.Page{
		page("keep-1", 1, "text"),
		page("drop", 2, "[private.icon]"),
		page("keep-2", 3, "text"),
		page("keep-3", 4, "text"),
	}

	got := f.Apply(pages)

	titles := make([]string, 0, len(got))
	for _, p := range got {
		titles = append(titles, p.Title)
	}

	assert.Equal(t, []string{"keep-1", "keep-2", "keep-3"}, titles)
}

func TestFilter_Apply_Empty(t *testing.T) {
	t.Parallel()

	f := NewFilter("")

	assert.Empty(t, f.Apply(nil))
	assert.Empty(t, f.Apply([]scrapbox.Page{page("a", 1, "[private.icon]")}))
}
