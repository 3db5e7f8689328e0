package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giygas/pharmacie-api/interfaces"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Compile-time check to ensure SQLStore implements TransactionalKVStore
var _ interfaces.TransactionalKVStore = (*SQLStore)(nil)

// kvEntry is one row of the kv_entries table
type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:64"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQLStore keeps each key as one row of a single table
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL connects with the given driver (sqlite, postgres or mysql), makes
// sure the table exists and checks the connection.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("kvstore: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("kvstore: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer, and an in-memory database lives on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("kvstore: migrate: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (supported: sqlite, postgres, mysql)", driver)
	}
}

// Get returns the value stored under key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getEntry(s.db.WithContext(ctx), key, false)
}

// Set upserts the value under key
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return putEntry(s.db.WithContext(ctx), key, value)
}

// Update runs fn in a database transaction. Rows read through the tx are
// locked until commit where the dialect supports it.
func (s *SQLStore) Update(ctx context.Context, fn func(tx interfaces.KVTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sqlTx{db: tx})
	})
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type sqlTx struct {
	db *gorm.DB
}

func (tx *sqlTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getEntry(tx.db.WithContext(ctx), key, true)
}

func (tx *sqlTx) Set(ctx context.Context, key string, value []byte) error {
	return putEntry(tx.db.WithContext(ctx), key, value)
}

func getEntry(db *gorm.DB, key string, forUpdate bool) ([]byte, bool, error) {
	if forUpdate && db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var e kvEntry
	err := db.Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore: get %s: %w", key, err)
	}
	if e.Value == nil {
		e.Value = []byte{}
	}
	return e.Value, true, nil
}

func putEntry(db *gorm.DB, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kvstore: set %s: %w", key, err)
	}
	return nil
}
