// Package store persists templates, brandings, layouts, variables, fonts,
// email settings and media in Postgres, with a redis read-through cache for
// the records every render needs.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"fmt"
	"time"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"

	"github.com/google/uuid"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

type Store struct {
	db     *database.PostgresClient
	cache  *Cache
	logger logger.Logger
	now    func() time.Time
}

// New builds a store. cache may be nil.
func New(db *database.PostgresClient, cache *Cache, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		db:     db,
		cache:  cache,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("apply schema: %w", err))
	}
	s.logger.Info("Database schema applied", nil)
	return nil
}

// Ping checks the database and, when configured, the cache.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	if s.cache != nil && s.cache.redis != nil {
		if err := s.cache.redis.Ping(ctx); err != nil {
			return errors.NewCacheUnavailableError(err)
		}
	}
	return nil
}

// readErr maps sql.ErrNoRows to notFound when one is given.
func (s *Store) readErr(collection string, err error, notFound *errors.StandardError) error {
	if notFound != nil && stderrors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	s.logger.Error("Store read failed", map[string]interface{}{
		"collection": collection,
		"error":      err.Error(),
	})
	return errors.NewStoreReadFailedError(collection, err)
}

func (s *Store) writeErr(collection string, err error) error {
	if std, ok := errors.AsStandardError(err); ok {
		return std
	}
	s.logger.Error("Store write failed", map[string]interface{}{
		"collection": collection,
		"error":      err.Error(),
	})
	return errors.NewStoreWriteFailedError(collection, err)
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
