// Package jsonstore provides generic, concurrent-safe, JSON file backed stores
// with live snapshot subscriptions.
//
// # Overview
//
// [EntityStore] holds a keyed collection of records and [ValueStore] holds at
// most one record. Each store instance is bound to one file, resolved through a
// [storepath.Resolver], and keeps the full content cached in memory after the
// first access.
//
// # Concurrency
//
// Every store instance owns a single semaphore. Loads, reads and mutations run
// one at a time in the order they acquire it, so no update is lost and no
// caller observes a half-applied cache. Waiting for the semaphore honors
// context cancellation. Different instances never share state.
//
// # Subscriptions
//
// Observe registers a [Subscription] whose channel yields the current snapshot
// first, then one new snapshot per successful mutation that changed the cache.
// Each subscriber has its own unbounded queue drained by a dedicated goroutine;
// writers enqueue and return, so a slow consumer never stalls the store or
// other consumers. A subscription ends when Close is called or when the
// context passed to Observe is done.
//
// # File Format
//
// Entity files contain a JSON array and value files a JSON object, both
// encoded by package codec with sorted keys. Writes go to a temporary file in
// the same directory which is then renamed over the target. A missing file is
// an empty collection or an absent value.
package jsonstore
