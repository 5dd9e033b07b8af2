package report

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/telmark/portsight/internal/model"
)

// NoPortsMessage is the fixed text returned for an empty endpoint map.
// "Nothing published" is a valid discovery outcome, so this is a report,
// not an error message.
const NoPortsMessage = "No exposed ports detected."

const (
	// urlGlyph prefixes every rendered URL row.
	urlGlyph = "→"

	// warnGlyph marks a service that is configured but publishes nothing.
	warnGlyph = "⚠"

	// noPortsPlaceholder is the row text for a service with an empty URL
	// list (the compose-file strategy's "ports section parsed but yielded
	// nothing valid" signal).
	noPortsPlaceholder = "no exposed ports"

	// glyphAllowance is the visual width reserved for a status glyph plus
	// its trailing space at the start of each URL cell.
	glyphAllowance = 2

	// maxNameWidth caps the service column so one absurdly long container
	// name cannot blow up the whole table. Longer names are truncated with
	// an ellipsis.
	maxNameWidth = 28

	// minStripPrefix is the minimum length a common service-name prefix
	// must have before it is worth stripping from display names.
	minStripPrefix = 3

	// hintLine is appended after the table when at least one URL was
	// rendered.
	hintLine = "Open a URL in your browser to reach the corresponding service."
)

// serviceRow pairs a service's display name with its sorted URL list.
type serviceRow struct {
	display string
	urls    []string
}

// Render formats an endpoint map as a boxed two-column table:
//
//	┌──────────┬──────────────────────────┐
//	│ Service  │ URL                      │
//	├──────────┼──────────────────────────┤
//	│ web      │ → http://host:8080       │
//	│          │ → http://host:8443       │
//	│ db       │ ⚠ no exposed ports       │
//	└──────────┴──────────────────────────┘
//
// URLs within a service are deduplicated and sorted; rows are ordered by
// display name. When every service shares a literal name prefix of at
// least three characters (a Compose project prefix like "myapp-"), the
// prefix is stripped from display names for readability — unless the map
// holds a single service, whose name is always shown in full.
//
// An empty map renders as NoPortsMessage. The output never ends with a
// trailing newline; Render is deterministic and idempotent.
func Render(endpoints model.EndpointMap) string {
	if endpoints.IsEmpty() {
		return NoPortsMessage
	}

	rows := buildRows(endpoints)

	// Column widths from the widest display name and the widest URL cell,
	// both bounded below by their header labels.
	nameWidth := utf8.RuneCountInString("Service")
	urlWidth := utf8.RuneCountInString("URL")
	for _, row := range rows {
		if w := utf8.RuneCountInString(row.display); w > nameWidth {
			nameWidth = w
		}
		if len(row.urls) == 0 {
			if w := glyphAllowance + len(noPortsPlaceholder); w > urlWidth {
				urlWidth = w
			}
		}
		for _, url := range row.urls {
			if w := glyphAllowance + utf8.RuneCountInString(url); w > urlWidth {
				urlWidth = w
			}
		}
	}
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}

	var b strings.Builder
	writeBorder(&b, "┌", "┬", "┐", nameWidth, urlWidth)
	writeRow(&b, "Service", "URL", nameWidth, urlWidth)
	writeBorder(&b, "├", "┼", "┤", nameWidth, urlWidth)

	hasURLs := false
	for _, row := range rows {
		name := truncate(row.display, nameWidth)

		if len(row.urls) == 0 {
			writeRow(&b, name, warnGlyph+" "+noPortsPlaceholder, nameWidth, urlWidth)
			continue
		}
		for i, url := range row.urls {
			hasURLs = true
			// The service name appears only on its first row; follow-up
			// rows leave the column blank so the grouping reads at a
			// glance.
			if i > 0 {
				name = ""
			}
			writeRow(&b, name, urlGlyph+" "+url, nameWidth, urlWidth)
		}
	}

	writeBorder(&b, "└", "┴", "┘", nameWidth, urlWidth)

	out := strings.TrimSuffix(b.String(), "\n")
	if hasURLs {
		out += "\n" + hintLine
	}
	return out
}

// buildRows converts the map into display rows: URLs deduplicated and
// lexicographically sorted per service, display names shortened by the
// common prefix where applicable, rows sorted by display name.
func buildRows(endpoints model.EndpointMap) []serviceRow {
	names := endpoints.ServiceNames()

	prefix := ""
	if len(names) > 1 {
		if p := commonPrefix(names); utf8.RuneCountInString(p) >= minStripPrefix {
			prefix = p
		}
	}

	rows := make([]serviceRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, serviceRow{
			display: displayName(name, prefix),
			urls:    sortedUnique(endpoints[name]),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].display < rows[j].display })
	return rows
}

// displayName strips the shared prefix from a service name and trims any
// separator characters the strip left behind. If stripping would erase the
// name entirely (the name WAS the prefix), the original is kept.
func displayName(name, prefix string) string {
	if prefix == "" {
		return name
	}
	short := strings.TrimLeft(strings.TrimPrefix(name, prefix), "-_.")
	if short == "" {
		return name
	}
	return short
}

// commonPrefix returns the longest literal prefix shared by all names.
func commonPrefix(names []string) string {
	prefix := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// sortedUnique returns a deduplicated, lexicographically sorted copy of the
// URL list. The input slice is never mutated — the endpoint map belongs to
// the caller.
func sortedUnique(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// truncate shortens a name to the given visual width, marking the cut with
// an ellipsis.
func truncate(name string, width int) string {
	if utf8.RuneCountInString(name) <= width {
		return name
	}
	runes := []rune(name)
	return string(runes[:width-1]) + "…"
}

// writeBorder emits a horizontal border line using the given corner and
// junction characters.
func writeBorder(b *strings.Builder, left, mid, right string, nameWidth, urlWidth int) {
	b.WriteString(left)
	b.WriteString(strings.Repeat("─", nameWidth+2))
	b.WriteString(mid)
	b.WriteString(strings.Repeat("─", urlWidth+2))
	b.WriteString(right)
	b.WriteString("\n")
}

// writeRow emits one table row, padding both cells to their column widths.
// Padding is computed from rune counts: the glyphs and box characters used
// here all occupy a single terminal column.
func writeRow(b *strings.Builder, name, url string, nameWidth, urlWidth int) {
	b.WriteString("│ ")
	b.WriteString(name)
	b.WriteString(strings.Repeat(" ", nameWidth-utf8.RuneCountInString(name)))
	b.WriteString(" │ ")
	b.WriteString(url)
	b.WriteString(strings.Repeat(" ", urlWidth-utf8.RuneCountInString(url)))
	b.WriteString(" │\n")
}
