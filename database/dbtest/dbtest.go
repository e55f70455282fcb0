// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"planttime/config"
	"planttime/database"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Open returns a migrated, empty database private to t. It is closed when t ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	// One connection keeps the in-memory database alive and serialises writers.
	return open(t, fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)), 1)
}

// OpenFile returns a migrated database in a file under t's temp directory,
// using the default connection pool as the server does.
func OpenFile(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "planttime.db"), 0)
}

// open connects to dsn, capping the pool at maxOpen connections when positive.
func open(t testing.TB, dsn string, maxOpen int) *gorm.DB {
	t.Helper()

	cfg := config.Default()
	cfg.DatabaseURL = dsn

	db, err := database.Open(cfg, Logger())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	t.Cleanup(func() {
		sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
