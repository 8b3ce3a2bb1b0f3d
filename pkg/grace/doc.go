// Package grace is the enforcement state machine behind limit decisions: one
// persisted state record per (owner, limit key) tracking warning, grace and
// block transitions.
//
// States for the exceed/block lifecycle:
//
//	Within (no exceed recorded) -> Exceeded/Grace (ExceededAt set) -> Blocked (BlockedAt set)
//
// Every transition is idempotent and safe under concurrent callers from
// independent processes: at-most-one GraceStart/Block/Warning event fires per
// logical occurrence. Stores guarantee this with storage-level uniqueness
// (composite unique key plus conflict-triggered re-read) and conditional
// updates, not in-process locks. Transient write conflicts are retried a
// bounded number of times; exhausting retries fails that single evaluation,
// never the process.
//
// Periodic limits stamp their state with the window start it belongs to.
// Reads compare the stamp against the current window and discard stale rows,
// which is how warnings, grace and blocks reset on window rollover — there is
// no scheduled cleanup job.
package grace
