package baits

import (
	"context"

	"github.com/dmitrijs2005/melitton/internal/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Bait, error)
	Insert(ctx context.Context, bait *models.Bait) error
	Update(ctx context.Context, bait *models.Bait) error
	Delete(ctx context.Context, id string) error
}
