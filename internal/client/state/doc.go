// Package state is the client's working copy of boxes and baits and the
// logic that keeps it in step with the persistence service.
//
// Every mutating call tries the server first. When the server cannot be
// reached, or refuses the payload, the change is kept locally, tagged
// pending, and returned with Source == SourceLocal and the remote error in
// Result.Err. Reconcile (or Run, on a ticker) later pushes pending records,
// swapping placeholder ids for server ids as soon as a create is confirmed.
// A refused record is held back from sweeps until it is edited again.
//
// The Go error return is reserved for problems the caller has to act on:
// invalid input, unknown ids and local storage failures.
//
// A Store is safe for concurrent use. Its mutex is never held across a
// network call, so a sweep and user commands can interleave; a sweep only
// overwrites a record that is unchanged since the sweep read it.
package state
