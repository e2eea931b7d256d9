package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/soocke/virtual-fence-go/assets"
)

// CaptureRecord is one row of the capture log.
type CaptureRecord struct {
	ID          uuid.UUID
	CapturedAt  time.Time
	Width       int
	Height      int
	ClickX      int
	ClickY      int
	FenceHeight float64
	FenceRadius float64
	// World is the fence centre; nil when the click did not resolve.
	World    *[3]float64
	Covered  int
	Coverage float64
	MaskPath string
}

// Store is the SQLite-backed capture log.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps writes serialized and in-memory databases shared.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: logger}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// Closing m would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version, 0 when nothing was applied.
func (s *Store) Version() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(assets.Migrations, assets.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{logger: s.logger}
	return m, nil
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct{ logger *slog.Logger }

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(fmt.Sprintf("[migrate] "+format, v...))
	}
}

func (l *migrateLogger) Verbose() bool { return false }

// Record inserts one capture.
func (s *Store) Record(ctx context.Context, rec CaptureRecord) error {
	var wx, wy, wz sql.NullFloat64
	if rec.World != nil {
		wx = sql.NullFloat64{Float64: rec.World[0], Valid: true}
		wy = sql.NullFloat64{Float64: rec.World[1], Valid: true}
		wz = sql.NullFloat64{Float64: rec.World[2], Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO captures (
			capture_id, captured_at, width, height, click_x, click_y,
			fence_height, fence_radius, world_x, world_y, world_z,
			covered, coverage, mask_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CapturedAt.UnixNano(), rec.Width, rec.Height, rec.ClickX, rec.ClickY,
		rec.FenceHeight, rec.FenceRadius, wx, wy, wz,
		rec.Covered, rec.Coverage, rec.MaskPath,
	)
	if err != nil {
		return fmt.Errorf("record capture %s: %w", rec.ID, err)
	}
	if s.logger != nil {
		s.logger.Debug("capture.recorded", "id", rec.ID.String(), "coverage", rec.Coverage)
	}
	return nil
}

// List returns up to limit captures, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]CaptureRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT capture_id, captured_at, width, height, click_x, click_y,
			fence_height, fence_radius, world_x, world_y, world_z,
			covered, coverage, mask_path
		FROM captures
		ORDER BY captured_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var out []CaptureRecord
	for rows.Next() {
		var (
			rec        CaptureRecord
			id         string
			at         int64
			wx, wy, wz sql.NullFloat64
		)
		if err := rows.Scan(&id, &at, &rec.Width, &rec.Height, &rec.ClickX, &rec.ClickY,
			&rec.FenceHeight, &rec.FenceRadius, &wx, &wy, &wz,
			&rec.Covered, &rec.Coverage, &rec.MaskPath); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse capture id %q: %w", id, err)
		}
		rec.CapturedAt = time.Unix(0, at)
		if wx.Valid && wy.Valid && wz.Valid {
			rec.World = &[3]float64{wx.Float64, wy.Float64, wz.Float64}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of recorded captures.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count captures: %w", err)
	}
	return n, nil
}
