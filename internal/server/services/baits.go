package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type BaitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBaitService(db *sql.DB, m repomanager.RepositoryManager) *BaitService {
	return &BaitService{db: db, repomanager: m}
}

func (s *BaitService) List(ctx context.Context) ([]models.Bait, error) {
	baits, err := s.repomanager.Baits(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing baits: %w", err)
	}
	return baits, nil
}

func normalizeBait(b *models.Bait) {
	b.SyncState = ""
	b.InstallDate = models.NormalizeDate(b.InstallDate)
	b.NextInspectionDate = models.NormalizeDate(b.NextInspectionDate)
	if b.Status.LastInspection != "" {
		b.Status.LastInspection = models.NormalizeDate(b.Status.LastInspection)
	}
}

func (s *BaitService) Create(ctx context.Context, bait models.Bait) (models.Bait, error) {
	normalizeBait(&bait)
	if err := bait.Validate(); err != nil {
		return models.Bait{}, err
	}
	bait.ID = uuid.NewString()

	if err := s.repomanager.Baits(s.db).Insert(ctx, &bait); err != nil {
		return models.Bait{}, fmt.Errorf("error creating bait: %w", err)
	}
	return bait, nil
}

func (s *BaitService) Update(ctx context.Context, id string, bait models.Bait) (models.Bait, error) {
	if !isServerID(id) {
		return models.Bait{}, common.ErrorNotFound
	}
	normalizeBait(&bait)
	bait.ID = id
	if err := bait.Validate(); err != nil {
		return models.Bait{}, err
	}

	if err := s.repomanager.Baits(s.db).Update(ctx, &bait); err != nil {
		return models.Bait{}, fmt.Errorf("error updating bait: %w", err)
	}
	return bait, nil
}

func (s *BaitService) Delete(ctx context.Context, id string) error {
	if !isServerID(id) {
		return nil
	}
	if err := s.repomanager.Baits(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting bait: %w", err)
	}
	return nil
}
