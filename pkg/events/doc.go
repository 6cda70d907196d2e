// Package events publishes fire-and-forget domain events to NATS.
//
// Events are published after a store write has been acknowledged, so the
// mutation is already committed from the caller's point of view. Publish
// failures are logged and swallowed: they never propagate to the domain
// service, and there is no retry.
//
// Every event is wrapped in a fixed envelope carrying the event type, the
// originating service name, a UTC timestamp, the payload, and optional
// metadata, and is delivered on a subject derived from the event type under
// a configurable namespace prefix (for example
// "centerfuze.organization.created").
package events
