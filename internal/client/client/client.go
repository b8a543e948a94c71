package client

import (
	"context"

	"github.com/dmitrijs2005/melitton/internal/models"
)

type Client interface {
	Ping(ctx context.Context) error

	ListBoxes(ctx context.Context) ([]models.Box, error)
	CreateBox(ctx context.Context, box models.Box) (models.Box, error)
	UpdateBox(ctx context.Context, box models.Box) (models.Box, error)
	DeleteBox(ctx context.Context, id string) error
	AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error)

	ListBaits(ctx context.Context) ([]models.Bait, error)
	CreateBait(ctx context.Context, bait models.Bait) (models.Bait, error)
	UpdateBait(ctx context.Context, bait models.Bait) (models.Bait, error)
	DeleteBait(ctx context.Context, id string) error
}
