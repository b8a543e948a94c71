// Package local is the CLI's durable working copy: the box/bait state and
// the user settings, each kept as one JSON document in an SQLite key/value
// table.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/melitton/internal/client/migrations"
	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/filex"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	StateKey    = "meligestao_data"
	SettingsKey = "meligestao_settings"
)

type Store struct {
	db *sql.DB
	kv KV
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite file at dsn and migrates it.
// ":memory:" gives a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn != ":memory:" {
		if _, err := filex.EnsureDir(filepath.Dir(dsn)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite serializes writers anyway, and each extra
	// connection to ":memory:" would see its own empty database.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local migrations: %w", err)
	}
	return &Store{db: db, kv: NewSQLiteKV(db)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

// LoadState returns the persisted state, or an empty one on first run.
func (s *Store) LoadState(ctx context.Context) (models.State, error) {
	var st models.State
	if _, err := s.load(ctx, StateKey, &st); err != nil {
		return models.State{}, err
	}
	if st.Boxes == nil {
		st.Boxes = []models.Box{}
	}
	if st.Baits == nil {
		st.Baits = []models.Bait{}
	}
	return st, nil
}

func (s *Store) SaveState(ctx context.Context, st models.State) error {
	return s.save(ctx, StateKey, st)
}

// LoadSettings returns the persisted settings, or the defaults on first run.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	st := models.DefaultSettings()
	if _, err := s.load(ctx, SettingsKey, &st); err != nil {
		return models.DefaultSettings(), err
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st models.Settings) error {
	return s.save(ctx, SettingsKey, st)
}

// Clear drops state and settings together.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := NewSQLiteKV(tx)
		for _, k := range []string{StateKey, SettingsKey} {
			if err := kv.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
