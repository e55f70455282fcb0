package database

import (
	"fmt"
	"strings"
	"time"

	"planttime/config"
	"planttime/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. The returned handle is passed
// explicitly to the store; nothing in this package keeps it.
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"driver": cfg.DatabaseDriver,
	}).Info("Database connection opened")
	return db, nil
}

// sqliteParams are appended to every SQLite DSN unless already present.
// Foreign keys are off per connection by default. Writers wait for the lock
// instead of failing with SQLITE_BUSY, and BEGIN IMMEDIATE takes the write
// lock up front so a read-then-insert transaction never has to upgrade.
var sqliteParams = []struct {
	key, value string
}{
	{"_foreign_keys", "on"},
	{"_busy_timeout", "5000"},
	{"_txlock", "immediate"},
}

func sqliteDSN(dsn string) string {
	for _, p := range sqliteParams {
		if strings.Contains(dsn, p.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.key + "=" + p.value
	}
	return dsn
}

// Migrate creates or updates the schema for all six entity tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Department{},
		&models.SubDepartment{},
		&models.ProductionLine{},
		&models.Worker{},
		&models.Project{},
		&models.TimeEntry{},
	)
	if err != nil {
		return err
	}

	// Postgres and SQLite both accept partial indexes with this syntax.
	return db.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON time_entries (worker_id) WHERE end_time IS NULL",
		models.ActiveEntryIndex,
	)).Error
}
