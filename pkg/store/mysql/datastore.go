package mysql

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"surveyor/pkg/store/mysql/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Datastore wraps GORM DB and provides transaction support
type Datastore struct {
	db *gorm.DB
}

// NewDatastore creates a new MySQL datastore
func NewDatastore(dsn string) (*Datastore, error) {
	ds, err := open(mysql.Open(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := ds.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic database object: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return ds, nil
}

// NewSQLiteDatastore creates a datastore on a SQLite file or memory DSN.
// SQLite allows a single writer, so the pool is capped at one connection.
func NewSQLiteDatastore(dsn string) (*Datastore, error) {
	ds, err := open(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := ds.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic database object: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return ds, nil
}

// Open picks the dialect by driver name (mysql or sqlite)
func Open(driver, dsn string) (*Datastore, error) {
	switch driver {
	case "", "mysql":
		return NewDatastore(dsn)
	case "sqlite":
		return NewSQLiteDatastore(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func open(dialector gorm.Dialector) (*Datastore, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		// Disable default transaction for better performance
		SkipDefaultTransaction: true,
		// Timestamps are stored in UTC at millisecond precision
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Datastore{db: db}, nil
}

// AutoMigrate creates or updates every table
func (ds *Datastore) AutoMigrate(ctx context.Context) error {
	err := ds.db.WithContext(ctx).AutoMigrate(
		&model.InputSystem{},
		&model.Provider{},
		&model.Instrument{},
		&model.ProfileSet{},
		&model.Profile{},
		&model.Experiment{},
		&model.ExperimentConfig{},
		&model.WorkUnit{},
		&model.Response{},
		&model.Result{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Now current time as the store records it
func (ds *Datastore) Now() time.Time {
	return ds.db.NowFunc()
}

// Close closes the database connection
func (ds *Datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction support using context
type contextTxKey struct{}

// ExecTx executes a function within a transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, the transaction is committed
func (ds *Datastore) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, contextTxKey{}, tx)
		return fn(ctx)
	})
}

// DB returns the GORM DB instance for the current context
// If a transaction is active in the context, it returns the transaction DB
// Otherwise, it returns the main DB
func (ds *Datastore) DB(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB)
	if ok {
		return tx.WithContext(ctx)
	}
	return ds.db.WithContext(ctx)
}

// GetDB returns the underlying GORM DB instance (for direct access if needed)
func (ds *Datastore) GetDB() *gorm.DB {
	return ds.db
}
