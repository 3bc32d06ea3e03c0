// Package events provides the realtime notification layer for the API.
//
// Mutating operations publish typed events to a process-wide Hub after
// their transaction commits. Connected clients receive every event over a
// server-sent-events stream; there is no per-board filtering and no replay
// of events published before a client subscribed.
//
// The primary components are:
// - Event: a typed payload broadcast to all subscribers
// - Hub: the subscriber registry with non-blocking fan-out
// - Publisher: interface implemented by the Hub for services to emit through
package events
