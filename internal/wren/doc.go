// Package wren is the HTTP client for the remote ask/chart generation
// service.
//
// The service exposes two job kinds, each as a submit-then-poll pair:
//
//   - ask: natural-language question -> SQL ([Client.SubmitAsk], [Client.AwaitAsk])
//   - chart: SQL + question -> chart specification ([Client.SubmitChart], [Client.AwaitChart])
//
// Await* polls the job status at a fixed interval until the job reaches a
// terminal state or a wall-clock deadline expires. Cancellation is carried
// by the context: a canceled context aborts the in-flight request and the
// pending poll delay immediately, and the returned error satisfies
// errors.Is(err, context.Canceled). Callers must treat that as "no-op, not
// a failure".
//
// The client is purely functional with respect to local state; its only
// side effect is network I/O.
package wren
