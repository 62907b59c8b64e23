// Package events defines the learning event stream: typed, schema-
// validated records emitted by the session and review services and
// persisted through a Sink collaborator. Every event is validated
// against its per-type payload schema before persistence; an unknown
// event type is a validation error, never a silent drop.
package events
