// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import "time"

// EventType says what happened to an object.
type EventType string

// The event types.
const (
	Added    EventType = "added"
	Modified EventType = "modified"
	Removed  EventType = "removed"
)

// Event describes one committed change.  Events from a single
// transaction are delivered in the order the changes were made.
type Event struct {
	Type      EventType `json:"type"`
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Workspace string    `json:"workspace,omitempty"`
	Name      string    `json:"name"`
	Time      time.Time `json:"time"`
}
