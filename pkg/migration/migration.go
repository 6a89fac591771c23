// Package migration tracks and runs schema migrations in order.
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/pkg/logger"
)

// Migration is a single reversible schema change.
type Migration struct {
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

type record struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex"`
	Batch     int
	AppliedAt time.Time
}

func (record) TableName() string { return "migrations" }

var registered []Migration

// Register adds a migration to the global list. Call from an init func in
// the migrations package; registration order is preserved by name sort.
func Register(m Migration) { registered = append(registered, m) }

// Runner applies and rolls back registered migrations against a database.
type Runner struct {
	db *gorm.DB
}

func NewRunner(db *gorm.DB) *Runner { return &Runner{db: db} }

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) applied() (map[string]record, int, error) {
	var recs []record
	if err := r.db.Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	out := make(map[string]record, len(recs))
	maxBatch := 0
	for _, rec := range recs {
		out[rec.Name] = rec
		if rec.Batch > maxBatch {
			maxBatch = rec.Batch
		}
	}
	return out, maxBatch, nil
}

// Run applies every registered migration that has not run yet, as one batch.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	done, maxBatch, err := r.applied()
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(registered))
	for _, m := range registered {
		if _, ok := done[m.Name]; !ok {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Name < pending[j].Name })

	if len(pending) == 0 {
		logger.Info("migration: nothing to migrate")
		return nil
	}

	batch := maxBatch + 1
	for _, m := range pending {
		logger.Info("migration: applying", "name", m.Name)
		if err := m.Up(r.db); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		rec := record{Name: m.Name, Batch: batch, AppliedAt: time.Now()}
		if err := r.db.Create(&rec).Error; err != nil {
			return fmt.Errorf("migration %s: record: %w", m.Name, err)
		}
	}
	logger.Info("migration: batch applied", "batch", batch, "count", len(pending))
	return nil
}

// Rollback undoes the most recent batch of migrations in reverse order.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	_, maxBatch, err := r.applied()
	if err != nil {
		return err
	}
	if maxBatch == 0 {
		logger.Info("migration: nothing to rollback")
		return nil
	}

	var recs []record
	if err := r.db.Where("batch = ?", maxBatch).Order("name DESC").Find(&recs).Error; err != nil {
		return err
	}

	byName := make(map[string]Migration, len(registered))
	for _, m := range registered {
		byName[m.Name] = m
	}

	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: %s applied but not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", m.Name)
		if m.Down != nil {
			if err := m.Down(r.db); err != nil {
				return fmt.Errorf("migration %s: down: %w", m.Name, err)
			}
		}
		if err := r.db.Delete(&record{}, rec.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// StatusEntry describes one migration's applied state.
type StatusEntry struct {
	Name      string
	Applied   bool
	Batch     int
	AppliedAt time.Time
}

// Status reports each registered migration and whether it has run.
func (r *Runner) Status() ([]StatusEntry, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, _, err := r.applied()
	if err != nil {
		return nil, err
	}

	names := make([]Migration, len(registered))
	copy(names, registered)
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })

	out := make([]StatusEntry, 0, len(names))
	for _, m := range names {
		e := StatusEntry{Name: m.Name}
		if rec, ok := done[m.Name]; ok {
			e.Applied = true
			e.Batch = rec.Batch
			e.AppliedAt = rec.AppliedAt
		}
		out = append(out, e)
	}
	return out, nil
}
