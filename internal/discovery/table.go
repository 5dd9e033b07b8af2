// table.go implements the second discovery strategy: parsing the legacy
// tab-delimited `docker compose ps` table with explicit Name and Ports
// columns. This covers Compose installations too old to support
// `--format json`.
package discovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/telmark/portsight/internal/model"
)

// publishedPortPattern extracts the host port from a published mapping
// segment such as "0.0.0.0:8080->80/tcp" or "[::]:8443->443/tcp".
// Matching on ":<port>->" handles both IPv4 and bracketed IPv6 host
// addresses without caring what the address looks like.
var publishedPortPattern = regexp.MustCompile(`:(\d+)->`)

// ParseComposeTable parses tab-delimited `Name<TAB>Ports` rows into an
// EndpointMap of reachable URLs on the given host.
//
// The first line is the header row and is skipped unconditionally. Each
// subsequent row splits on the first tab; rows whose ports column lacks the
// "->" published-mapping marker (e.g. a database exposing only an internal
// "3306/tcp") contribute nothing.
func ParseComposeTable(output, host string) model.EndpointMap {
	endpoints := make(model.EndpointMap)

	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return endpoints
	}

	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Split on the first tab only: the ports column itself never
		// contains tabs, but guarding against extra columns keeps a
		// slightly different format string from corrupting names.
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		portsColumn := parts[1]

		if name == "" || !strings.Contains(portsColumn, "->") {
			continue
		}

		// A ports column may hold several comma-separated mappings; the
		// pattern collects every published host port in one pass.
		for _, match := range publishedPortPattern.FindAllStringSubmatch(portsColumn, -1) {
			port, err := strconv.Atoi(match[1])
			if err != nil || !model.ValidPort(port) {
				continue
			}
			endpoints[name] = append(endpoints[name], model.ServiceURL(host, port))
		}
	}

	return dedupeEndpoints(endpoints)
}
