// Package worker runs the render pipeline on a single goroutine.
//
// # Lifecycle
//
// A [Worker] owns one drawing surface and one set of decoded stickers. It
// moves through
//
//	Uninitialized -> Ready -> (Compositing -> Ready)*
//
// The surface arrives once through an [Init] request carrying a
// [canvas.Transferable]. The stickers load in the background from the
// [AssetSource] as soon as [Worker.Run] starts; their completion is fed back
// into the worker goroutine as an event and answered with [Ready] or an
// ASSET_LOAD [Error]. A [Generate] request that arrives before both are
// present is rejected with SURFACE_NOT_READY rather than queued.
//
// # Messages
//
// Requests and responses are closed sets of Go types. Each request
// dispatches itself to the matching method of an internal handler interface,
// so adding a request kind does not compile until the worker handles it.
// Responses to a request carry the request's ID; [Worker.Send] assigns a
// UUID when the caller leaves it empty.
//
// # State
//
// Handlers take the current [State] and return the next one. Nothing else
// mutates it, and it never leaves the worker goroutine, so no locks guard
// it. A panic inside a handler is recovered into an INTERNAL_ERROR response
// and the previous state is kept.
//
// [Client] wraps a running worker for callers that want request/response
// calls instead of channels.
package worker
