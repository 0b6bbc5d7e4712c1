package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wikicms/internal/util"
	"wikicms/models"
)

// SQLiteArticleRepository implements the ArticleRepository interface for SQLite
type SQLiteArticleRepository struct {
	db *sql.DB
}

// NewSQLiteArticleRepository creates a new SQLiteArticleRepository
func NewSQLiteArticleRepository(db *sql.DB) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteArticleRepository) Close() error {
	return r.db.Close()
}

// FindAll finds all articles ordered by ID
func (r *SQLiteArticleRepository) FindAll(ctx context.Context) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, content FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		var article models.Article
		if err := rows.Scan(&article.ID, &article.Title, &article.Content); err != nil {
			return nil, fmt.Errorf("error scanning article: %w", err)
		}
		articles = append(articles, &article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}

// FindByID finds an article by ID
func (r *SQLiteArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, content FROM articles WHERE id = ?`, id)

	var article models.Article
	err := row.Scan(&article.ID, &article.Title, &article.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning article: %w", err)
	}

	return &article, nil
}

// Save inserts the article or overwrites the row with the same ID
func (r *SQLiteArticleRepository) Save(ctx context.Context, article *models.Article) (*models.Article, error) {
	query := `
	INSERT INTO articles (id, title, content) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content`

	err := util.RetryOnLock(func() error {
		_, err := r.db.ExecContext(ctx, query, article.ID, article.Title, article.Content)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error saving article: %w", err)
	}

	saved := *article
	return &saved, nil
}

// DeleteByID deletes an article by ID; deleting a missing ID is not an error
func (r *SQLiteArticleRepository) DeleteByID(ctx context.Context, id string) error {
	err := util.RetryOnLock(func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("error deleting article: %w", err)
	}
	return nil
}

// Count counts stored articles
func (r *SQLiteArticleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting articles: %w", err)
	}
	return count, nil
}

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// FindAll finds all users in ID order
func (r *SQLiteUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, password FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// FindByID finds a user by ID
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, username, password FROM users WHERE id = ?`, numericID)
	return scanUserRow(row)
}

// FindByUsername finds the first user with the given username
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ? ORDER BY id LIMIT 1`, username)
	return scanUserRow(row)
}

// FindByCredentials finds the first user matching both username and password
func (r *SQLiteUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ? AND password = ? ORDER BY id LIMIT 1`,
		username, password)
	return scanUserRow(row)
}

// Create inserts a user and returns it with the assigned ID
func (r *SQLiteUserRepository) Create(ctx context.Context, username, password string) (*models.User, error) {
	result, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?, ?)`, username, password)
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading user id: %w", err)
	}

	return &models.User{
		ID:       strconv.FormatInt(id, 10),
		Username: username,
		Password: password,
	}, nil
}

// Count counts stored users
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

// SQLiteEventLogRepository implements the EventLogRepository interface for SQLite
type SQLiteEventLogRepository struct {
	db *sql.DB
}

// NewSQLiteEventLogRepository creates a new SQLiteEventLogRepository
func NewSQLiteEventLogRepository(db *sql.DB) *SQLiteEventLogRepository {
	return &SQLiteEventLogRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteEventLogRepository) Close() error {
	return r.db.Close()
}

// Create appends an event log entry
func (r *SQLiteEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	var createdAt time.Time
	if eventLog.CreatedAt != nil {
		createdAt = *eventLog.CreatedAt
	} else {
		createdAt = time.Now()
	}

	return util.RetryOnLock(func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO event_logs (type, description, article_id, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			string(eventLog.Type), eventLog.Description,
			nullString(eventLog.ArticleID), nullString(eventLog.UserID), createdAt)
		if err != nil {
			return fmt.Errorf("error inserting event log: %w", err)
		}
		return nil
	})
}

// FindLatest returns the newest entries, up to limit
func (r *SQLiteEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	return r.query(ctx,
		`SELECT type, description, article_id, user_id, created_at FROM event_logs ORDER BY id DESC LIMIT ?`,
		limit)
}

// FindAllByArticleID returns the newest entries for one article, up to limit
func (r *SQLiteEventLogRepository) FindAllByArticleID(ctx context.Context, articleID string, limit int) ([]*models.EventLog, error) {
	return r.query(ctx,
		`SELECT type, description, article_id, user_id, created_at FROM event_logs WHERE article_id = ? ORDER BY id DESC LIMIT ?`,
		articleID, limit)
}

func (r *SQLiteEventLogRepository) query(ctx context.Context, query string, args ...any) ([]*models.EventLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying event logs: %w", err)
	}
	defer rows.Close()

	eventLogs := make([]*models.EventLog, 0)
	for rows.Next() {
		var (
			eventLog  models.EventLog
			eventType string
			articleID sql.NullString
			userID    sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&eventType, &eventLog.Description, &articleID, &userID, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning event log: %w", err)
		}
		eventLog.Type = models.EEventLogType(eventType)
		if articleID.Valid {
			eventLog.ArticleID = &articleID.String
		}
		if userID.Valid {
			eventLog.UserID = &userID.String
		}
		eventLog.CreatedAt = &createdAt
		eventLogs = append(eventLogs, &eventLog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event logs: %w", err)
	}

	return eventLogs, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var id int64
	var user models.User
	if err := s.Scan(&id, &user.Username, &user.Password); err != nil {
		return nil, err
	}
	user.ID = strconv.FormatInt(id, 10)
	return &user, nil
}

func scanUserRow(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return user, nil
}
