// Package bridge manages the external browser-automation worker: it spawns
// the worker as a detached process, keeps it alive as a long-lived session
// shared across invocations and agents, proxies method calls to it over
// HTTP, and replays its trace log into the platform's telemetry store.
//
// Liveness is always decided by probing the worker's health endpoint, never
// by process-table checks: the supervisor may outlive or never have known
// the worker's true OS lifetime. The known imprecision, that an unrelated
// process listening on the recorded port would pass the probe, is accepted
// in exchange for cross-platform simplicity.
package bridge
