package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telmark/portsight/internal/model"
)

// TestRender_EmptyMap verifies the fixed terminal message for an empty
// endpoint map — exactly the message, no table, no hint.
func TestRender_EmptyMap(t *testing.T) {
	assert.Equal(t, NoPortsMessage, Render(model.EndpointMap{}))
	assert.Equal(t, NoPortsMessage, Render(nil))
}

// TestRender_SingleService verifies the basic table shape: header, one URL
// row with the link glyph, and the trailing hint.
func TestRender_SingleService(t *testing.T) {
	endpoints := model.EndpointMap{
		"myapp-web-1": {"http://host:8080"},
	}

	out := Render(endpoints)

	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "URL")
	assert.Contains(t, out, "→ http://host:8080")
	assert.Contains(t, out, hintLine, "a map with URLs must carry the hint")
	assert.Contains(t, out, "myapp-web-1",
		"a single-service map must never have its name shortened")
}

// TestRender_PrefixStripping verifies that a shared Compose project prefix
// of at least three characters is stripped from display names.
func TestRender_PrefixStripping(t *testing.T) {
	endpoints := model.EndpointMap{
		"myapp-web-1": {"http://host:8080"},
		"myapp-db-1":  {"http://host:3306"},
	}

	out := Render(endpoints)

	assert.Contains(t, out, "│ web-1")
	assert.Contains(t, out, "│ db-1")
	assert.NotContains(t, out, "myapp-", "the common prefix must be stripped")
}

// TestRender_PrefixStripFallback verifies that a name equal to the common
// prefix keeps its original form instead of rendering empty, while its
// siblings still get stripped (including leftover separators).
func TestRender_PrefixStripFallback(t *testing.T) {
	endpoints := model.EndpointMap{
		"app":    {"http://host:8080"},
		"app-db": {"http://host:3306"},
	}

	out := Render(endpoints)

	assert.Contains(t, out, "│ app ", "the prefix-only name keeps its original form")
	assert.Contains(t, out, "│ db ", "the sibling is stripped and the separator trimmed")
}

// TestRender_ShortPrefixNotStripped verifies that a common prefix shorter
// than three characters is left alone.
func TestRender_ShortPrefixNotStripped(t *testing.T) {
	endpoints := model.EndpointMap{
		"a-web": {"http://host:8080"},
		"a-db":  {"http://host:3306"},
	}

	out := Render(endpoints)

	assert.Contains(t, out, "a-web")
	assert.Contains(t, out, "a-db")
}

// TestRender_URLsSortedAndDeduplicated verifies per-service URL
// deduplication and lexicographic ordering in the rendered output.
func TestRender_URLsSortedAndDeduplicated(t *testing.T) {
	endpoints := model.EndpointMap{
		"web": {"http://host:9000", "http://host:80", "http://host:9000"},
	}

	out := Render(endpoints)

	assert.Equal(t, 1, strings.Count(out, "http://host:9000"), "duplicates must collapse")
	assert.Less(t,
		strings.Index(out, "http://host:80"),
		strings.Index(out, "http://host:9000"),
		"URLs must be sorted lexicographically")
}

// TestRender_ServiceNameOnlyOnFirstRow verifies that a service with
// several URLs shows its name once, with follow-up rows blank.
func TestRender_ServiceNameOnlyOnFirstRow(t *testing.T) {
	endpoints := model.EndpointMap{
		"web": {"http://host:8080", "http://host:8443"},
	}

	out := Render(endpoints)

	assert.Equal(t, 1, strings.Count(out, "web"),
		"the service name must appear exactly once")
	assert.Equal(t, 2, strings.Count(out, "→ "), "both URLs must be rendered")
}

// TestRender_EmptyServiceWarningRow verifies that a service with an empty
// URL list renders a warning row instead of crashing, and that a map with
// ONLY such services carries no hint line.
func TestRender_EmptyServiceWarningRow(t *testing.T) {
	endpoints := model.EndpointMap{
		"worker": {},
	}

	out := Render(endpoints)

	assert.Contains(t, out, warnGlyph+" "+noPortsPlaceholder)
	assert.NotContains(t, out, hintLine,
		"the hint only follows when at least one URL was rendered")
}

// TestRender_MixedServicesKeepHint verifies that one real URL among
// warning rows is enough for the hint to appear.
func TestRender_MixedServicesKeepHint(t *testing.T) {
	endpoints := model.EndpointMap{
		"myapp-web-1":    {"http://host:8080"},
		"myapp-worker-1": {},
	}

	out := Render(endpoints)

	assert.Contains(t, out, "→ http://host:8080")
	assert.Contains(t, out, warnGlyph+" "+noPortsPlaceholder)
	assert.Contains(t, out, hintLine)
}

// TestRender_Idempotent verifies that formatting the same map twice yields
// byte-identical text — the renderer is pure and must not depend on map
// iteration order.
func TestRender_Idempotent(t *testing.T) {
	endpoints := model.EndpointMap{
		"myapp-web-1":    {"http://host:8080", "http://host:8443"},
		"myapp-db-1":     {"http://host:3306"},
		"myapp-worker-1": {},
	}

	first := Render(endpoints)
	second := Render(endpoints)

	require.Equal(t, first, second)
}

// TestRender_RowsAligned verifies that every table line has the same
// visual width, so the box actually lines up in a terminal.
func TestRender_RowsAligned(t *testing.T) {
	endpoints := model.EndpointMap{
		"myapp-web-1": {"http://host:8080"},
		"myapp-db-1":  {"http://host:3306"},
	}

	out := Render(endpoints)

	lines := strings.Split(out, "\n")
	// The final line is the hint; everything before it is the table.
	table := lines[:len(lines)-1]
	require.NotEmpty(t, table)

	width := len([]rune(table[0]))
	for _, line := range table {
		assert.Len(t, []rune(line), width, "table lines must share one width: %q", line)
	}
}

// TestRender_LongNameTruncated verifies the service column cap: an
// absurdly long container name is truncated with an ellipsis instead of
// blowing up the table.
func TestRender_LongNameTruncated(t *testing.T) {
	long := strings.Repeat("verylongname-", 5) // 65 chars
	endpoints := model.EndpointMap{
		long: {"http://host:8080"},
	}

	out := Render(endpoints)

	assert.NotContains(t, out, long, "the full name must not appear")
	assert.Contains(t, out, "…", "truncation must be marked")
}
