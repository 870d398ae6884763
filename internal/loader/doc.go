// Package loader is the resource dependency engine.
//
// A Registry owns every Resource, keyed by the raw request string that asked
// for it, and every named Profile. A Resource loads at most once: Load starts
// a fetch through the registry's Fetcher and a deadline timer, and whichever
// finishes first decides the terminal state (Loaded or TimedOut).
//
// A Callback is a one-shot join over any number of Resources. Its function
// runs exactly once, after every bound Resource has settled, receiving nil if
// all loaded or the first LoadTimeoutError otherwise. Resources already loaded
// when bound count as settled immediately, so a Callback built only from
// loaded resources fires inside NewCallback.
//
// # Dedup
//
// Resources are deduplicated by the exact request string, directives
// included. "timeout=500!a.js" and "a.js" are two Resources with two fetches
// even though both resolve to the address "a.js".
//
// # Failure model
//
// Only the deadline is a failure. A fetch returning an error is logged and
// otherwise ignored; the resource then times out. A timed-out fetch is not
// cancelled, and its late completion is discarded.
//
// # Concurrency
//
// Resources and Callbacks each guard their state with a mutex. State
// transitions and listener snapshots happen under the lock; listeners,
// callback functions and observers run after it is released and may call back
// into the engine.
package loader
