package boxlogs

import (
	"context"

	"github.com/dmitrijs2005/melitton/internal/models"
)

// Repository stores management logs, always under an owning box.
type Repository interface {
	// ListAll returns every log grouped by box id, newest first within a box.
	ListAll(ctx context.Context) (map[string][]models.ManagementLog, error)
	Insert(ctx context.Context, boxID string, log *models.ManagementLog) error
}
