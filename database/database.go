package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/viktsys/woolauction/config"
	"github.com/viktsys/woolauction/models"
	"github.com/viktsys/woolauction/retry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the postgres connection. Queries run through do, which checks
// the pool only after a failure and reconnects with backoff when it no
// longer answers.
type Store struct {
	cfg config.DatabaseConfig
	log *zap.Logger

	mu sync.Mutex
	db *gorm.DB
}

// Open connects with bounded retry.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	s := &Store{cfg: cfg, log: log}
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	log.Info("Database connected", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return s, nil
}

func (s *Store) retryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:    s.cfg.ConnectAttempts,
		InitialDelay:   s.cfg.ConnectBackoff,
		JitterFraction: 0.1,
		Retryable:      transient,
		Logger:         s.log,
	}
}

// transient reports whether a connect error may clear on its own. Bad
// credentials and unknown databases fail every attempt.
func transient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "28", "3D":
			return false
		}
	}
	return true
}

func (s *Store) connect(ctx context.Context) (*gorm.DB, error) {
	db, err := retry.DoWithResult(ctx, s.retryConfig(), func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(s.cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, err
		}

		sqlDB.SetMaxOpenConns(s.cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(s.cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(s.cfg.ConnMaxIdleTime)
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// conn returns the current handle, connecting first when there is none.
func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.WithContext(ctx), nil
	}
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db.WithContext(ctx), nil
}

// do runs op. When op fails and the pool no longer answers a ping, the pool
// is replaced and op runs once more.
func (s *Store) do(ctx context.Context, op func(db *gorm.DB) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	err = op(db)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if pingErr := ping(ctx, db); pingErr == nil {
		return err
	}

	s.log.Warn("Database health check failed, reconnecting", zap.Error(err))
	s.reset(db)
	if db, err = s.conn(ctx); err != nil {
		return err
	}
	return op(db)
}

// reset drops the pool behind stale unless another caller already replaced it.
func (s *Store) reset(stale *gorm.DB) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return
	}
	cur, err := s.db.DB()
	if err != nil {
		return
	}
	if old, err := stale.DB(); err != nil || old != cur {
		return
	}
	cur.Close()
	s.db = nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Ping reports whether the database answers, reconnecting if needed.
func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, func(db *gorm.DB) error {
		return ping(ctx, db)
	})
}

// DB exposes a healthy handle for batch writers.
func (s *Store) DB(ctx context.Context) (*gorm.DB, error) {
	return s.conn(ctx)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

// Migrate creates the trade export tables. The lot view is owned elsewhere
// and never migrated.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&models.TradeExport{}, &models.ExportMonthlyAggregate{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := OptimizeIndexes(db); err != nil {
		s.log.Warn("Failed to optimize indexes", zap.Error(err))
	}
	return nil
}
