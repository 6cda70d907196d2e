// Package transport exposes the organization and module services over NATS
// request/reply.
//
// Every request subject is handled by a queue-group subscription so that
// service replicas share the load. Request payloads are JSON request
// objects; replies use the shared response envelope with a status, a
// message, a timestamp, and either a data object or an error code.
//
// The server also consumes module reconciliation events from the external
// module authority on a wildcard subject and feeds them to the module
// syncer. These inbound events are handled but, except for sync requests,
// never answered.
package transport
