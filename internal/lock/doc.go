// Package lock provides named, TTL-bound mutual exclusion across processes.
//
// A Locker is the storage side: it grants a key to one holder at a time and
// forgets the grant once its TTL passes, so a crashed holder can only block a
// key for one TTL. Grants are identified by an opaque token and only the
// current token can release a key.
//
// Coordinator runs a function while holding a key. Failed acquisitions are
// retried with a growing wait:
//
//	wait = MinWait
//	for each failed attempt:
//	    sleep(wait)
//	    wait = min(wait*(1+Growth), MaxWait)
//
// Retrying stops when MaxAttempts is used up or the context is done, and
// RunExclusive then returns ErrNotAcquired. MaxAttempts of zero retries until
// the context ends.
//
// Two Lockers ship with the service: MemoryLocker for a single process and
// postgres.Locker backed by the resource_locks table.
package lock
