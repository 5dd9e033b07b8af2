// composefile.go implements the third discovery strategy: recovering
// statically configured host-port mappings from the text of the remote
// docker-compose.yml itself.
//
// The file is deliberately NOT decoded with a YAML library. This strategy
// only runs when the deployment cannot be listed live, which is exactly
// when the file on disk may be half-edited or subtly broken — a strict YAML
// decode would reject the inputs this fallback exists for. Instead a
// single-pass line scanner recovers whatever the short `"host:container"`
// port grammar recognizes and skips everything else.
//
// The long object form of a port mapping (separate `target:`/`published:`
// keys) is a known gap and intentionally unhandled.
package discovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/telmark/portsight/internal/model"
)

// indentUnit is the fixed indentation step the scanner recognizes: service
// names sit at one unit, service properties at two.
const indentUnit = 2

// scanState is the scanner's position within the compose file structure.
// Modeling the position as a tagged state (rather than a pair of booleans)
// makes illegal combinations such as "inside a ports block with no current
// service" unrepresentable.
type scanState int

const (
	// stateTopLevel: before the services section, or inside some other
	// top-level section (volumes:, networks:, ...).
	stateTopLevel scanState = iota

	// stateServices: inside services:, before the first service block.
	stateServices

	// stateService: inside a service block, outside its ports list.
	stateService

	// statePorts: inside the current service's ports: list.
	statePorts
)

// portEntryPattern matches a short-form ports list item and captures the
// host-side port, tolerating optional quoting:
//
//	- "8080:80"
//	- 3306:3306
//	- '9000:9000'
var portEntryPattern = regexp.MustCompile(`^-\s*["']?(\d+):\d+`)

// ParseComposeFile line-scans a docker-compose.yml's text into an
// EndpointMap of reachable URLs on the given host.
//
// Scanning rules:
//   - a zero-indent line ending in ":" starts a new top-level section;
//     only "services:" opens service scanning, anything else leaves it
//   - a one-unit-indented line ending in ":" names a (new) service
//   - the literal line "ports:" inside a service opens its ports list
//   - a two-unit-indented line ending in ":" closes an open ports list
//     (a new service property began)
//   - list items inside the ports list contribute their host port
//
// A service whose ports list opens but yields no valid entries stays in the
// map with an empty URL list. That entry is a deliberate signal — the
// service is configured but publishes nothing — and is rendered by the
// report as a warning row rather than dropped.
func ParseComposeFile(content, host string) model.EndpointMap {
	endpoints := make(model.EndpointMap)

	state := stateTopLevel
	service := ""

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			// Blank lines and comments are inert: a commented-out
			// "# services:" must not reset the scanner.
			continue
		}

		indent := leadingSpaces(line)

		// New top-level section: resets any service/ports context.
		if indent == 0 && strings.HasSuffix(trimmed, ":") {
			if trimmed == "services:" {
				state = stateServices
			} else {
				state = stateTopLevel
			}
			service = ""
			continue
		}

		if state == stateTopLevel {
			continue
		}

		// New service block at exactly one indent unit. This both enters
		// the first service and switches between sibling services. A bare
		// ":" line names nothing and is ignored.
		if indent == indentUnit && strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, "-") {
			if name := strings.TrimSuffix(trimmed, ":"); name != "" {
				service = name
				state = stateService
			}
			continue
		}

		switch state {
		case stateService:
			if trimmed == "ports:" {
				state = statePorts
				// Record the service immediately so that a ports list
				// with no valid entries still leaves its empty-list
				// signal in the map.
				if _, ok := endpoints[service]; !ok {
					endpoints[service] = []string{}
				}
			}

		case statePorts:
			if strings.HasPrefix(trimmed, "-") {
				match := portEntryPattern.FindStringSubmatch(trimmed)
				if match == nil {
					continue
				}
				port, err := strconv.Atoi(match[1])
				if err != nil || !model.ValidPort(port) {
					continue
				}
				endpoints[service] = append(endpoints[service], model.ServiceURL(host, port))
			} else if indent == 2*indentUnit && strings.HasSuffix(trimmed, ":") {
				// A new property at the same level as "ports:" closes
				// the list (e.g. "environment:" right after the ports).
				state = stateService
			}
		}
	}

	return dedupeEndpoints(endpoints)
}

// leadingSpaces counts the spaces before the first non-space character.
// Tabs are not part of the recognized grammar — YAML forbids them for
// indentation — so they simply terminate the count.
func leadingSpaces(line string) int {
	count := 0
	for _, ch := range line {
		if ch != ' ' {
			break
		}
		count++
	}
	return count
}
