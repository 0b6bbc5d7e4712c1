package db

import (
	"context"
	"database/sql"
	"errors"

	"wikicms/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// ArticleRepository defines the interface for article operations.
// Save inserts or overwrites the record stored under article.ID.
type ArticleRepository interface {
	Repository
	FindAll(ctx context.Context) ([]*models.Article, error)
	FindByID(ctx context.Context, id string) (*models.Article, error)
	Save(ctx context.Context, article *models.Article) (*models.Article, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user operations.
// Create assigns the next identifier; identifiers are never reused.
type UserRepository interface {
	Repository
	FindAll(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// RepositoryFactory creates repositories based on the configured driver
type RepositoryFactory struct {
	SQLiteDB *sql.DB
}

// NewRepositoryFactory creates a new repository factory. A nil db selects
// the in-memory repositories.
func NewRepositoryFactory(sqliteDB *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
	}
}

// NewArticleRepository creates a new article repository
func (f *RepositoryFactory) NewArticleRepository() ArticleRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteArticleRepository(f.SQLiteDB)
	}
	return NewMemoryArticleRepository()
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteUserRepository(f.SQLiteDB)
	}
	return NewMemoryUserRepository()
}

// EventLogRepository stores the activity log. Find methods return the
// newest entries first.
type EventLogRepository interface {
	Repository
	Create(ctx context.Context, eventLog *models.EventLog) error
	FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error)
	FindAllByArticleID(ctx context.Context, articleID string, limit int) ([]*models.EventLog, error)
}

// NewEventLogRepository creates a new event log repository
func (f *RepositoryFactory) NewEventLogRepository() EventLogRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteEventLogRepository(f.SQLiteDB)
	}
	return NewMemoryEventLogRepository()
}
