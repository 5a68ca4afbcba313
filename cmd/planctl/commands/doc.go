// Package commands defines the planctl CLI, a client of the itinerary gateway.
//
// Commands
//
//   - plan     Request an itinerary (buffered or streamed) and print it with per-day totals
//   - health   Probe the gateway liveness endpoint
//   - calls    List recent upstream calls from the audit log (needs DB_* settings)
//
// The root command builds one gateway client with a shared timeout before any
// subcommand runs.
package commands
