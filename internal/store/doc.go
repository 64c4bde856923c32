// Package store provides the persisted conversation model: threads of
// chart artifacts, the pinned-chart dashboard collection, and the active
// thread selection.
//
// Persistence is whole-document JSON through the [Storage] abstraction,
// with a file backend under ~/.askviz guarded by an advisory lock and an
// in-memory backend for tests. Every mutation rewrites the full collection;
// no partial write is ever observable.
//
// In-memory state is the source of truth for the current process: a failed
// durable write is logged and the in-memory change stands.
//
// Thread Safety: stores are not safe for concurrent use. All mutation
// happens from the coordinator's single event loop.
package store
