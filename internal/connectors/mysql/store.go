package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"fiber-ring-topology-ui/internal/config"
	"fiber-ring-topology-ui/internal/dataset"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// QueryObserver receives the duration and outcome of every query.
type QueryObserver func(operation string, d time.Duration, err error)

// Store wraps MySQL access to the link table.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	dbName       string
	table        string
	schema       dataset.Schema
	observe      QueryObserver
}

// NewStore creates a MySQL-backed store reading cfg.DBTable.
func NewStore(cfg config.Config, schema dataset.Schema) (*Store, error) {
	if err := ValidateTableName(cfg.DBTable); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		queryTimeout: cfg.DBQueryTimeout,
		dbName:       cfg.DBName,
		table:        cfg.DBTable,
		schema:       schema,
	}, nil
}

// ValidateTableName rejects anything that is not a plain identifier, since
// the table name is interpolated into SQL.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Observe registers fn to be called after every query.
func (s *Store) Observe(fn QueryObserver) {
	if s != nil {
		s.observe = fn
	}
}

func (s *Store) record(operation string, start time.Time, err error) {
	if s.observe != nil {
		s.observe(operation, time.Since(start), err)
	}
}

// Table returns the configured link table name.
func (s *Store) Table() string {
	if s == nil {
		return ""
	}
	return s.table
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
