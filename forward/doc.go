// Package forward implements the invocation forwarder: the collaborator
// that turns a resolved handler reference into an actual call. The
// forwarder queries the dispatch table on every forwarded call and
// never caches a resolution, so a clear-then-bind upgrade takes effect
// on the very next invocation.
//
// How a handler reference maps onto executable code is the embedding
// system's business; here an Invoker attached to a reference stands in
// for whatever call mechanism the environment provides.
package forward
