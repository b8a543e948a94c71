// Package models defines the domain records shared by the Melitton server
// and CLI: hive boxes, their management logs, bait traps and client settings.
package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/melitton/internal/common"
)

// Location is where a box or bait sits. Coordinates are optional.
type Location struct {
	Description string   `json:"description"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

func (l Location) clone() Location {
	c := Location{Description: l.Description}
	if l.Lat != nil {
		v := *l.Lat
		c.Lat = &v
	}
	if l.Lng != nil {
		v := *l.Lng
		c.Lng = &v
	}
	return c
}

// ManagementLog is a dated maintenance event. It is owned by exactly one Box.
type ManagementLog struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Type      LogType   `json:"type"`
	Notes     string    `json:"notes"`
	Quantity  string    `json:"quantity,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	SyncState SyncState `json:"syncState,omitempty"`
}

func (l *ManagementLog) Validate() error {
	if _, err := ParseDate(l.Date); err != nil {
		return fmt.Errorf("log date: %w", err)
	}
	if !l.Type.Valid() {
		return fmt.Errorf("%w: unknown log type %q", common.ErrValidation, l.Type)
	}
	return nil
}

// Box is a managed hive box with its management history, newest first.
type Box struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Species           Species         `json:"species"`
	BoxType           string          `json:"boxType"`
	InstallDate       string          `json:"installDate"`
	Origin            Origin          `json:"origin"`
	Location          Location        `json:"location"`
	Status            BoxStatus       `json:"status"`
	Photo             string          `json:"photo,omitempty"`
	Observations      string          `json:"observations"`
	ManagementHistory []ManagementLog `json:"managementHistory"`
	SyncState         SyncState       `json:"syncState,omitempty"`
}

func (b *Box) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: box name is required", common.ErrValidation)
	}
	if !b.Species.Valid() {
		return fmt.Errorf("%w: unknown species %q", common.ErrValidation, b.Species)
	}
	if !b.Origin.Valid() {
		return fmt.Errorf("%w: unknown origin %q", common.ErrValidation, b.Origin)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("%w: unknown box status %q", common.ErrValidation, b.Status)
	}
	if _, err := ParseDate(b.InstallDate); err != nil {
		return fmt.Errorf("install date: %w", err)
	}
	return nil
}

// Clone returns a deep copy, history included.
func (b Box) Clone() Box {
	c := b
	c.Location = b.Location.clone()
	if b.ManagementHistory != nil {
		c.ManagementHistory = slices.Clone(b.ManagementHistory)
	}
	return c
}

// SortLogs orders logs newest-first by date. Logs sharing a date keep their
// relative order, so a freshly prepended log stays on top.
func SortLogs(logs []ManagementLog) {
	slices.SortStableFunc(logs, func(a, b ManagementLog) int {
		return strings.Compare(NormalizeDate(b.Date), NormalizeDate(a.Date))
	})
}
