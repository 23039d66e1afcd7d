// Package metrics provides Prometheus instrumentation for the rule
// engine.
//
// All record methods are safe to call on a nil receiver, so callers can
// wire metrics optionally without guarding every call site.
package metrics
