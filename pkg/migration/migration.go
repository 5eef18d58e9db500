// Package migration runs ordered, batch-tracked schema migrations.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register(migration.Migration{
//	        Name: "20260101000000_create_users_table",
//	        Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.User{}) },
//	        Down: func(db *gorm.DB) error { return db.Migrator().DropTable("users") },
//	    })
//	}
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/campusprint/printhub/pkg/logger"
	"gorm.io/gorm"
)

// Migration is one named schema change. Names are timestamp-prefixed so they
// sort chronologically.
type Migration struct {
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "printhub_migrations" }

var (
	registryMu sync.Mutex
	registry   []Migration
)

// Register adds m to the global registry.
func Register(m Migration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, m)
}

// Registered returns a name-sorted copy of the registry.
func Registered() []Migration {
	registryMu.Lock()
	out := make([]Migration, len(registry))
	copy(out, registry)
	registryMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Runner executes and tracks migrations against one database.
type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

// New creates a Runner over every registered migration.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, migrations: Registered()}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Pending lists migrations that have not been applied yet.
func (r *Runner) Pending() ([]Migration, error) {
	if err := r.ensureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	done, err := r.ran()
	if err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	var pending []Migration
	for _, m := range r.migrations {
		if _, ok := done[m.Name]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Run applies every pending migration as one batch. Each migration and its
// history row commit together.
func (r *Runner) Run() error {
	pending, err := r.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("migration: nothing to migrate")
		return nil
	}

	batch := r.lastBatch() + 1
	for _, m := range pending {
		logger.Info("migration: running", "name", m.Name, "batch", batch)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: m.Name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s up: %w", m.Name, err)
		}
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch in reverse order.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	batch := r.lastBatch()
	if batch == 0 {
		logger.Info("migration: nothing to roll back")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byName[m.Name] = m
	}

	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		logger.Info("migration: rolling back", "name", row.Name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, row.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
	}
	return nil
}

// Status writes a table of migrations and their batch to w.
func (r *Runner) Status(w io.Writer) error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.ran()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, m := range r.migrations {
		if row, ok := done[m.Name]; ok {
			fmt.Fprintf(w, "%-60s  %-8s  %d\n", m.Name, "Ran", row.Batch)
		} else {
			fmt.Fprintf(w, "%-60s  %-8s  -\n", m.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch() int {
	var out struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&out)
	return out.Max
}
