// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - ProgressEvent: the best fitness after a generation or iteration
//   - RunEvent: a finished (or failed) search run
package events
