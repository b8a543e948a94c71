// Package services holds the Persistence Service business logic: payload
// validation, identity assignment and the transactional rules around boxes,
// their management logs and bait traps.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type BoxService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBoxService(db *sql.DB, m repomanager.RepositoryManager) *BoxService {
	return &BoxService{db: db, repomanager: m}
}

// isServerID reports whether id can name a stored row. Anything else, local
// placeholders included, cannot exist on the server.
func isServerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// List returns all boxes with their histories attached, newest log first.
// Both queries run in one read-only transaction so a log is never attached
// to a box listing taken at a different moment.
func (s *BoxService) List(ctx context.Context) ([]models.Box, error) {
	var boxes []models.Box
	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		boxes, err = s.repomanager.Boxes(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("error listing boxes: %w", err)
		}

		logs, err := s.repomanager.BoxLogs(tx).ListAll(ctx)
		if err != nil {
			return fmt.Errorf("error listing logs: %w", err)
		}

		for i := range boxes {
			h := logs[boxes[i].ID]
			if h == nil {
				h = []models.ManagementLog{}
			}
			boxes[i].ManagementHistory = h
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

func normalizeBox(b *models.Box) {
	b.SyncState = ""
	b.InstallDate = models.NormalizeDate(b.InstallDate)
}

// Create stores a new box under a fresh UUID. Any id or history in the
// payload is ignored.
func (s *BoxService) Create(ctx context.Context, box models.Box) (models.Box, error) {
	normalizeBox(&box)
	if err := box.Validate(); err != nil {
		return models.Box{}, err
	}

	box.ID = uuid.NewString()
	box.ManagementHistory = []models.ManagementLog{}

	if err := s.repomanager.Boxes(s.db).Insert(ctx, &box); err != nil {
		return models.Box{}, fmt.Errorf("error creating box: %w", err)
	}
	return box, nil
}

// Update overwrites the box named by id. Its logs are untouched and are not
// part of the returned value.
func (s *BoxService) Update(ctx context.Context, id string, box models.Box) (models.Box, error) {
	if !isServerID(id) {
		return models.Box{}, common.ErrorNotFound
	}
	normalizeBox(&box)
	box.ID = id
	box.ManagementHistory = nil
	if err := box.Validate(); err != nil {
		return models.Box{}, err
	}

	if err := s.repomanager.Boxes(s.db).Update(ctx, &box); err != nil {
		return models.Box{}, fmt.Errorf("error updating box: %w", err)
	}
	return box, nil
}

// Delete removes the box and, through the foreign key, its logs. Deleting an
// unknown id is not an error.
func (s *BoxService) Delete(ctx context.Context, id string) error {
	if !isServerID(id) {
		return nil
	}
	if err := s.repomanager.Boxes(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting box: %w", err)
	}
	return nil
}

// AddLog appends a management log to an existing box.
func (s *BoxService) AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error) {
	if !isServerID(boxID) {
		return models.ManagementLog{}, common.ErrorNotFound
	}
	log.SyncState = ""
	log.Date = models.NormalizeDate(log.Date)
	if err := log.Validate(); err != nil {
		return models.ManagementLog{}, err
	}
	log.ID = uuid.NewString()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Boxes(tx).Get(ctx, boxID); err != nil {
			return err
		}
		return s.repomanager.BoxLogs(tx).Insert(ctx, boxID, &log)
	})
	if err != nil {
		return models.ManagementLog{}, fmt.Errorf("error adding log: %w", err)
	}
	return log, nil
}
