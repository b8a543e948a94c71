package models

import (
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/common"
)

const (
	DefaultUserName                = "Meliponicultor"
	DefaultInspectionFrequencyDays = 15
)

// Settings is client-only configuration. It is never sent to the server.
type Settings struct {
	UserName                string `json:"userName"`
	InspectionFrequencyDays int    `json:"inspectionFrequencyDays"`
	Theme                   Theme  `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		UserName:                DefaultUserName,
		InspectionFrequencyDays: DefaultInspectionFrequencyDays,
		Theme:                   ThemeLight,
	}
}

func (s *Settings) Validate() error {
	if s.InspectionFrequencyDays < 1 {
		return fmt.Errorf("%w: inspection frequency must be at least 1 day", common.ErrValidation)
	}
	if !s.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", common.ErrValidation, s.Theme)
	}
	return nil
}
