// Package pipeline chains the two remote jobs behind a question: an ask
// job that translates the question into SQL, then a chart job that turns
// that SQL into a chart-specification document.
//
// A run is a single pass through both jobs. The caller owns the context;
// cancelling it aborts whichever job is in flight. Phase callbacks let the
// caller surface progress without the pipeline knowing anything about the
// UI.
//
// Thread Safety: a Runner is stateless between runs and safe for
// concurrent use, though the session layer only ever keeps one run in
// flight.
package pipeline
