// json.go implements the highest-fidelity discovery strategy: parsing the
// output of `docker compose ps --format json`.
//
// Modern Compose emits one JSON object per line (NDJSON), not a single
// enclosing array, so the parser decodes line by line. This also makes the
// parse resilient: one truncated or garbled record costs exactly one line,
// never the whole listing.
package discovery

import (
	"encoding/json"
	"strings"

	"github.com/telmark/portsight/internal/model"
)

// psRecord is the subset of a `docker compose ps --format json` record that
// discovery needs. Compose emits many more fields (ID, State, Health, ...);
// they are silently ignored during deserialization.
type psRecord struct {
	// Name is the container name, e.g. "myapp-web-1".
	Name string `json:"Name"`

	// Publishers lists the container's port mappings. Entries with
	// PublishedPort 0 are internal-only and contribute nothing.
	Publishers []model.Publisher `json:"Publishers"`
}

// ParseComposeJSON parses per-line JSON records from a compose ps listing
// into an EndpointMap of reachable URLs on the given host.
//
// A record contributes to the map only if it carries a non-empty name and
// at least one publisher whose published port is valid. Lines that fail to
// decode are skipped — a malformed line never aborts the whole parse.
func ParseComposeJSON(output, host string) model.EndpointMap {
	endpoints := make(model.EndpointMap)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var record psRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			// Not a JSON object — could be a warning line from the docker
			// CLI mixed into stdout. Skip it and keep going.
			continue
		}
		if record.Name == "" {
			continue
		}

		// Accumulate one URL per valid published port. Multiple publishers
		// for one record (e.g. 8080/tcp and 8443/tcp) all land in the same
		// service's list.
		for _, pub := range record.Publishers {
			if !model.ValidPort(pub.PublishedPort) {
				continue
			}
			endpoints[record.Name] = append(endpoints[record.Name], model.ServiceURL(host, pub.PublishedPort))
		}
	}

	return dedupeEndpoints(endpoints)
}

// dedupeEndpoints removes duplicate URLs within each service's list,
// preserving first-seen order. Deduplication happens once at the end of a
// parse rather than interleaved with accumulation, which keeps the
// per-strategy parsing logic auditable.
//
// Services whose lists become empty are dropped entirely — except entries
// that were already empty, which are kept: the compose-file strategy uses
// an empty list as a deliberate "configured but nothing published" signal.
func dedupeEndpoints(endpoints model.EndpointMap) model.EndpointMap {
	for name, urls := range endpoints {
		if len(urls) == 0 {
			continue
		}
		endpoints[name] = dedupeURLs(urls)
	}
	return endpoints
}

// dedupeURLs returns the input slice with duplicates removed, keeping the
// first occurrence of each URL.
func dedupeURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	return unique
}
