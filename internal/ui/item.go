package ui

import (
	"fmt"
	"strings"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/parser"
)

// LinkItem wraps a parser.Link to implement list.Item interface.
type LinkItem struct {
	Link parser.Link
}

// FilterValue returns the string used for filtering.
// Implements list.Item interface.
func (i LinkItem) FilterValue() string {
	return i.Link.URL + " " + i.Link.FilePath
}

// Title returns the main display text for the item.
// Implements list.DefaultItem interface.
func (i LinkItem) Title() string {
	return helpers.TruncateURL(i.Link.URL, 80)
}

// Description returns secondary text for the item.
// Implements list.DefaultItem interface.
func (i LinkItem) Description() string {
	l := i.Link
	desc := fmt.Sprintf("%s | %s", l.Type, helpers.Location(l))
	if text := helpers.TruncateText(strings.TrimSpace(l.Text), 40); text != "" {
		desc += fmt.Sprintf(" | %q", text)
	}
	return desc
}

// DetailView returns an expanded detail view for the selected item.
func (i LinkItem) DetailView() string {
	l := i.Link
	var b strings.Builder

	b.WriteString("┌─ Details ─────────────────────────────────────────────────────────────\n")
	b.WriteString(fmt.Sprintf("│ %s  %s\n", DetailLabelStyle.Render("URL:"), l.URL))
	b.WriteString(fmt.Sprintf("│ %s  %s %s\n", DetailLabelStyle.Render("Type:"),
		TypeBadge(l.Type), MutedStyle.Render(string(l.Type.Category()))))

	if text := helpers.TruncateText(strings.TrimSpace(l.Text), 60); text != "" {
		label := "Text:"
		if l.Type.Category() == parser.CategoryStructured {
			label = "Path:"
		}
		b.WriteString(fmt.Sprintf("│ %s  %q\n", DetailLabelStyle.Render(label), text))
	}

	b.WriteString("│\n")
	b.WriteString(fmt.Sprintf("│ %s  %s\n", DetailLabelStyle.Render("File:"), helpers.Location(l)))
	b.WriteString(fmt.Sprintf("│ %s  %d\n", DetailLabelStyle.Render("Offset:"), l.Offset))

	b.WriteString("└────────────────────────────────────────────────────────────────────────\n")

	return b.String()
}

// LinksToItems converts links to LinkItems.
func LinksToItems(links []parser.Link) []LinkItem {
	items := make([]LinkItem, len(links))
	for i, l := range links {
		items[i] = LinkItem{Link: l}
	}
	return items
}
