package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies the SQL files under the migrations directory.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.SugaredLogger
}

// NewMigrator opens a migrator for dir against the database at dsn.
// A relative dir is resolved by walking up from the working directory.
func NewMigrator(dsn, dir string, log *zap.SugaredLogger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	resolved, err := findMigrationDir(dir)
	if err != nil {
		return nil, err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(resolved), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	mg.logVersion("migrations applied")
	return nil
}

// Down rolls back the given number of migrations.
func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive")
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	mg.logVersion("migrations rolled back")
	return nil
}

// Version returns the current schema version.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.log.Warnw("failed to read schema version", "error", err)
		return
	}
	mg.log.Infow(msg, "version", version, "dirty", dirty)
}

// RunMigrations applies all pending migrations and closes the migrator.
func RunMigrations(dsn, dir string, log *zap.SugaredLogger) error {
	mg, err := NewMigrator(dsn, dir, log)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

// findMigrationDir walks up from the working directory looking for dir.
func findMigrationDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for cur := wd; ; cur = filepath.Dir(cur) {
		candidate := filepath.Join(cur, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(cur) == cur {
			break
		}
	}
	return "", fmt.Errorf("migrations directory %q not found", dir)
}
