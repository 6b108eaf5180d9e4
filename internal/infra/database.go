package infra

import (
	"fmt"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates / updates every table, then applies the constraints and
// indexes AutoMigrate cannot express. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.PaperType{},
		&model.ItemType{},
		&model.Program{},
		&model.Reel{},
		&model.Ruling{},
		&model.RulingEntry{},
		&model.Stock{},
		&model.StockMovement{},
		&model.StatusLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded by an existence
// check so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"reels capacity never exceeds initial yield", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_reels_available_le_initial') THEN
    ALTER TABLE reels ADD CONSTRAINT chk_reels_available_le_initial
      CHECK (available_sheets IS NULL OR (initial_sheets IS NOT NULL AND available_sheets <= initial_sheets));
  END IF;
END $$`},
		{"stocks totals are non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stocks_non_negative') THEN
    ALTER TABLE stocks ADD CONSTRAINT chk_stocks_non_negative
      CHECK (total_weight >= 0 AND reel_count >= 0);
  END IF;
END $$`},
		// rebuild and stock listing only scan live reels
		{"partial index on live reels", `
CREATE INDEX IF NOT EXISTS idx_reels_live_by_paper_type
    ON reels (paper_type_id)
    WHERE status <> 'Finished'`},
		{"ruling history by reel, newest first", `
CREATE INDEX IF NOT EXISTS idx_rulings_reel_created
    ON rulings (reel_id, created_at DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
