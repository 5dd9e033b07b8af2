// listeners.go implements the last-resort discovery strategy: a raw dump
// of listening ports owned by the docker-proxy process, pre-filtered and
// sorted by the remote shell pipeline that produced it.
//
// At this level all container identity is gone — the dump is just numbers —
// so every discovered port is attributed to a single synthetic
// "unknown-services" entry rather than inventing a naming scheme.
package discovery

import (
	"sort"
	"strconv"
	"strings"

	"github.com/telmark/portsight/internal/model"
)

// ParseListenerDump parses a newline-separated list of bare port numbers
// into an EndpointMap holding a single synthetic entry.
//
// Each token is validated as an integer in the accepted port range; invalid
// tokens are dropped. The remaining ports are deduplicated and emitted in
// ascending numeric order. If nothing survives validation the result is an
// empty map, letting the cascade report "no exposed ports detected".
func ParseListenerDump(output, host string) model.EndpointMap {
	seen := make(map[int]bool)
	var ports []int

	for _, line := range strings.Split(output, "\n") {
		token := strings.TrimSpace(line)
		if token == "" {
			continue
		}
		port, err := strconv.Atoi(token)
		if err != nil || !model.ValidPort(port) || seen[port] {
			continue
		}
		seen[port] = true
		ports = append(ports, port)
	}

	if len(ports) == 0 {
		return model.EndpointMap{}
	}

	// The pipeline sorts its output, but re-sorting here keeps the
	// ascending-order guarantee independent of the remote shell's behavior.
	sort.Ints(ports)

	urls := make([]string, 0, len(ports))
	for _, port := range ports {
		urls = append(urls, model.ServiceURL(host, port))
	}

	return model.EndpointMap{model.UnknownServicesKey: urls}
}
