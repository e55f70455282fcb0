package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

const MaxLimit = 1000

// Page selects a window of a listing. Rows come back in insertion order.
type Page struct {
	Offset int
	Limit  int
}

func NewPage(offset, limit int) (Page, error) {
	if offset < 0 {
		return Page{}, fmt.Errorf("skip must not be negative: %w", ErrValidation)
	}
	if limit < 1 {
		return Page{}, fmt.Errorf("limit must be positive: %w", ErrValidation)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Offset: offset, Limit: limit}, nil
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

// Store owns every persisted record. A Store is safe for concurrent use; each
// call runs on its own session bound to the caller's context.
type Store struct {
	db  *gorm.DB
	log *logrus.Logger
}

func New(db *gorm.DB, log *logrus.Logger) *Store {
	return &Store{
		db:  db,
		log: log,
	}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// Ping checks that the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func get[T any](db *gorm.DB, id uint) (*T, error) {
	var record T
	err := db.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func list[T any](db *gorm.DB, page Page) ([]T, error) {
	records := make([]T, 0)
	if err := page.scope(db).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// findOrCreate returns the row matching key, inserting record when none
// exists. It reports whether a row was inserted.
func findOrCreate[T any](db *gorm.DB, record *T, key map[string]interface{}) (bool, error) {
	var existing T
	err := db.Where(key).First(&existing).Error
	if err == nil {
		*record = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	err = db.Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent insert of the same key won.
		if err := db.Where(key).First(&existing).Error; err != nil {
			return false, err
		}
		*record = existing
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) logCreate(kind string, id uint, created bool) {
	entry := s.log.WithFields(logrus.Fields{
		"kind": kind,
		"id":   id,
	})
	if created {
		entry.Info("Record created")
		return
	}
	entry.Debug("Record already exists, returning existing")
}
