// Package session coordinates the user-visible session: pipeline status,
// the active view, confirmation-gated mutations, and at-most-one in-flight
// query run.
//
// The Controller is a pure state machine over the thread and pinned stores.
// It never performs I/O itself: the front end starts pipeline runs with the
// context and token the controller hands out, and reports completion back
// through FinishRun. Tokens make superseded runs inert: a completion
// carrying a stale token is discarded without touching any store, so
// cancellation always wins the race against a slow completion.
//
// Thread Safety: not safe for concurrent use; all calls happen on the
// front end's single event loop.
package session
