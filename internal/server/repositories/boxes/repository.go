package boxes

import (
	"context"

	"github.com/dmitrijs2005/melitton/internal/models"
)

// Repository stores hive boxes without their logs; see boxlogs.
type Repository interface {
	List(ctx context.Context) ([]models.Box, error)
	Get(ctx context.Context, id string) (models.Box, error)
	Insert(ctx context.Context, box *models.Box) error
	Update(ctx context.Context, box *models.Box) error
	Delete(ctx context.Context, id string) error
}
