// Package migrate applies and tracks schema migrations on top of gorm.
//
// Migrations are applied in name order. Names carry a timestamp prefix
// ("20240601090000_create_users") so lexical order is chronological. Every
// call to Run applies all pending migrations as one batch and Rollback
// reverts the most recent batch.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDuplicateMigration  = errors.New("duplicate migration name")
	ErrUnknownMigration    = errors.New("migration is recorded but not registered")
	ErrNothingToRollback   = errors.New("nothing to roll back")
	ErrMissingMigrationFns = errors.New("migration must define Up and Down")
)

type Migration struct {
	Name string
	Up   func(tx *gorm.DB) error
	Down func(tx *gorm.DB) error
}

// Record is a row of the tracking table.
type Record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (Record) TableName() string { return "schema_migrations" }

type Status struct {
	Name  string
	Ran   bool
	Batch int
}

type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

func NewRunner(db *gorm.DB, migrations []Migration) (*Runner, error) {
	seen := make(map[string]bool, len(migrations))
	sorted := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMigration, m.Name)
		}
		if m.Up == nil || m.Down == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingMigrationFns, m.Name)
		}
		seen[m.Name] = true
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return &Runner{db: db, migrations: sorted}, nil
}

func (r *Runner) ensureTable(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&Record{})
}

func (r *Runner) ran(ctx context.Context) (map[string]Record, error) {
	var records []Record
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	ran := make(map[string]Record, len(records))
	for _, rec := range records {
		ran[rec.Name] = rec
	}

	return ran, nil
}

// Pending returns the migrations that have not been applied yet.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("r.ensureTable -> %w", err)
	}

	ran, err := r.ran(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.ran -> %w", err)
	}

	var pending []Migration
	for _, m := range r.migrations {
		if _, ok := ran[m.Name]; !ok {
			pending = append(pending, m)
		}
	}

	return pending, nil
}

// Run applies every pending migration and returns the names it applied.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		zap.L().Info("migrate: nothing to migrate")
		return nil, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.lastBatch -> %w", err)
	}
	batch++

	applied := make([]string, 0, len(pending))
	for _, m := range pending {
		zap.L().Info("migrate: applying", zap.String("name", m.Name), zap.Int("batch", batch))

		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("%s up -> %w", m.Name, err)
			}

			return tx.Create(&Record{Name: m.Name, Batch: batch}).Error
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, m.Name)
	}

	return applied, nil
}

// Rollback reverts every migration of the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("r.ensureTable -> %w", err)
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.lastBatch -> %w", err)
	}
	if batch == 0 {
		return nil, ErrNothingToRollback
	}

	var records []Record
	err = r.db.WithContext(ctx).
		Where("batch = ?", batch).
		Order("name desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byName[m.Name] = m
	}

	reverted := make([]string, 0, len(records))
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return reverted, fmt.Errorf("%w: %s", ErrUnknownMigration, rec.Name)
		}

		zap.L().Info("migrate: rolling back", zap.String("name", rec.Name), zap.Int("batch", batch))

		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return fmt.Errorf("%s down -> %w", m.Name, err)
			}

			return tx.Delete(&Record{}, rec.ID).Error
		})
		if err != nil {
			return reverted, err
		}
		reverted = append(reverted, rec.Name)
	}

	return reverted, nil
}

// Status lists every known migration and whether it has been applied.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("r.ensureTable -> %w", err)
	}

	ran, err := r.ran(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.ran -> %w", err)
	}

	statuses := make([]Status, 0, len(r.migrations))
	for _, m := range r.migrations {
		rec, ok := ran[m.Name]
		statuses = append(statuses, Status{Name: m.Name, Ran: ok, Batch: rec.Batch})
	}

	return statuses, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var batch sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&Record{}).
		Select("MAX(batch)").
		Row()
	if err := row.Scan(&batch); err != nil {
		return 0, err
	}

	return int(batch.Int64), nil
}
