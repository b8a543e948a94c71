package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/baits"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxlogs"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeBoxesRepo struct {
	rows      map[string]models.Box
	order     []string
	listErr   error
	insertErr error
	updateErr error
	deleteErr error
	getErr    error
}

func newFakeBoxesRepo() *fakeBoxesRepo {
	return &fakeBoxesRepo{rows: map[string]models.Box{}}
}

func (f *fakeBoxesRepo) List(context.Context) ([]models.Box, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Box, 0, len(f.order))
	for _, id := range f.order {
		if b, ok := f.rows[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBoxesRepo) Get(_ context.Context, id string) (models.Box, error) {
	if f.getErr != nil {
		return models.Box{}, f.getErr
	}
	b, ok := f.rows[id]
	if !ok {
		return models.Box{}, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeBoxesRepo) Insert(_ context.Context, b *models.Box) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[b.ID] = *b
	f.order = append(f.order, b.ID)
	return nil
}

func (f *fakeBoxesRepo) Update(_ context.Context, b *models.Box) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[b.ID]; !ok {
		return common.ErrorNotFound
	}
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBoxesRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

type fakeLogsRepo struct {
	logs      map[string][]models.ManagementLog
	listErr   error
	insertErr error
}

func (f *fakeLogsRepo) ListAll(context.Context) (map[string][]models.ManagementLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.logs, nil
}

func (f *fakeLogsRepo) Insert(_ context.Context, boxID string, l *models.ManagementLog) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.logs == nil {
		f.logs = map[string][]models.ManagementLog{}
	}
	f.logs[boxID] = append([]models.ManagementLog{*l}, f.logs[boxID]...)
	return nil
}

type fakeBaitsRepo struct {
	rows      map[string]models.Bait
	listErr   error
	insertErr error
}

func (f *fakeBaitsRepo) List(context.Context) ([]models.Bait, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Bait, 0, len(f.rows))
	for _, b := range f.rows {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBaitsRepo) Insert(_ context.Context, b *models.Bait) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBaitsRepo) Update(_ context.Context, b *models.Bait) error {
	if _, ok := f.rows[b.ID]; !ok {
		return common.ErrorNotFound
	}
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBaitsRepo) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

type fakeRepoManager struct {
	boxes *fakeBoxesRepo
	logs  *fakeLogsRepo
	baits *fakeBaitsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		boxes: newFakeBoxesRepo(),
		logs:  &fakeLogsRepo{},
		baits: &fakeBaitsRepo{rows: map[string]models.Bait{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Boxes(dbx.DBTX) boxes.Repository             { return m.boxes }
func (m *fakeRepoManager) BoxLogs(dbx.DBTX) boxlogs.Repository         { return m.logs }
func (m *fakeRepoManager) Baits(dbx.DBTX) baits.Repository             { return m.baits }
