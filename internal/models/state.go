package models

import "slices"

// Tombstones are server identities deleted locally whose remote delete
// has not been confirmed yet.
type Tombstones struct {
	Boxes []string `json:"boxes,omitempty"`
	Baits []string `json:"baits,omitempty"`
}

// State is the client's persisted working copy of both collections.
type State struct {
	Boxes          []Box      `json:"boxes"`
	Baits          []Bait     `json:"baits"`
	PendingDeletes Tombstones `json:"pendingDeletes"`
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	c := State{
		Boxes: make([]Box, 0, len(s.Boxes)),
		Baits: make([]Bait, 0, len(s.Baits)),
		PendingDeletes: Tombstones{
			Boxes: slices.Clone(s.PendingDeletes.Boxes),
			Baits: slices.Clone(s.PendingDeletes.Baits),
		},
	}
	for _, b := range s.Boxes {
		c.Boxes = append(c.Boxes, b.Clone())
	}
	for _, b := range s.Baits {
		c.Baits = append(c.Baits, b.Clone())
	}
	return c
}

// Backup is the export/import document: both collections and nothing else.
type Backup struct {
	Boxes []Box  `json:"boxes"`
	Baits []Bait `json:"baits"`
}
