package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/melitton/internal/common"
)

// BaitStatus is the occupancy of a trap and the date it was last checked.
type BaitStatus struct {
	State          BaitState `json:"state"`
	LastInspection string    `json:"lastInspection"`
}

// Bait is a swarm-capture trap installed in the field.
type Bait struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	Attractant         string     `json:"attractant"`
	Location           Location   `json:"location"`
	InstallDate        string     `json:"installDate"`
	TargetSpecies      Species    `json:"targetSpecies"`
	Status             BaitStatus `json:"status"`
	NextInspectionDate string     `json:"nextInspectionDate"`
	Photo              string     `json:"photo,omitempty"`
	SyncState          SyncState  `json:"syncState,omitempty"`
}

func (b *Bait) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: bait name is required", common.ErrValidation)
	}
	if !b.TargetSpecies.Valid() {
		return fmt.Errorf("%w: unknown species %q", common.ErrValidation, b.TargetSpecies)
	}
	if !b.Status.State.Valid() {
		return fmt.Errorf("%w: unknown bait state %q", common.ErrValidation, b.Status.State)
	}
	if _, err := ParseDate(b.InstallDate); err != nil {
		return fmt.Errorf("install date: %w", err)
	}
	if _, err := ParseDate(b.NextInspectionDate); err != nil {
		return fmt.Errorf("next inspection date: %w", err)
	}
	if b.Status.LastInspection != "" {
		if _, err := ParseDate(b.Status.LastInspection); err != nil {
			return fmt.Errorf("last inspection date: %w", err)
		}
	}
	return nil
}

func (b Bait) Clone() Bait {
	c := b
	c.Location = b.Location.clone()
	return c
}
