// Package discovery infers which ports a remote Docker Compose deployment
// publishes, using nothing but shell commands issued over an established
// remote session and text parsing of their output.
//
// The caller has no access to the remote orchestration API, so discovery is
// a cascade of four independent strategies tried in fixed priority order:
//
//  1. `docker compose ps --format json` — one JSON record per line
//  2. `docker compose ps` with a tab-delimited Name/Ports format
//  3. the docker-compose.yml file itself — statically configured mappings
//  4. a raw listener dump filtered down to docker-proxy ports
//
// Each strategy pairs a remote command with a parser that turns the
// command's heterogeneous text output into a model.EndpointMap. The cascade
// stops at the first strategy that yields a non-empty map; if all four come
// up empty, the result is an empty map — a valid "no exposed ports
// detected" outcome, not an error.
//
// Parsers are forgiving by design: a malformed line or row is skipped at
// the finest grain and never aborts the remainder of that strategy's parse.
package discovery
