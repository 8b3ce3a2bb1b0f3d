// Package usage provides the two counting strategies behind limit
// enforcement.
//
// Persistent caps use a live count over caller-owned rows, performed by a
// CounterFunc registered per limit key. Counting is live so deletions are
// reflected immediately; the engine never caches these counts beyond a single
// evaluation.
//
// Periodic allowances use windowed counter records, one per (owner, limit
// key, window). Records are created lazily on first consumption and their
// counters only ever grow; there are no refunds. Concurrent first increments
// in the same window must not create duplicate rows, which each backend
// guarantees in its own way: the memory store with a mutex, the Postgres
// store with an upsert over the composite unique key, the Redis store with
// atomic INCRBY.
package usage
