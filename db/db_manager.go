package db

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"wikicms/models"
)

// ErrManagerStopped is returned for operations submitted after Stop
var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serialises access to the stores. A single worker goroutine runs
// queued operations one at a time, so each request's store work completes
// before the next request's work is observed.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
	done          chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
		done:          make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	zap.S().Debug("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	defer close(m.done)
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- op.Execute()
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation runs execute on the worker and waits for its error
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return ErrManagerStopped
	}

	select {
	case err := <-resultChan:
		return err
	case <-m.done:
		return ErrManagerStopped
	}
}

// ExecuteOperationWithResult runs execute on the worker and waits for its result
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	select {
	case m.resultOpQueue <- OperationWithResult{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return nil, ErrManagerStopped
	}

	select {
	case result := <-resultChan:
		return result.Data, result.Error
	case <-m.done:
		return nil, ErrManagerStopped
	}
}

// Stop stops the worker and waits for it to exit. Calling Stop twice is safe.
func (m *DBManager) Stop() {
	select {
	case <-m.stopping:
	default:
		close(m.stopping)
	}
	<-m.done
}

// Methods for specific repository operations

// FindAllArticles serializes article listing
func (m *DBManager) FindAllArticles(repo ArticleRepository, ctx context.Context) ([]*models.Article, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.FindAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Article), nil
}

// FindArticleByID serializes a single article lookup
func (m *DBManager) FindArticleByID(repo ArticleRepository, ctx context.Context, id string) (*models.Article, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Article), nil
}

// SaveArticle serializes article inserts and overwrites
func (m *DBManager) SaveArticle(repo ArticleRepository, ctx context.Context, article *models.Article) (*models.Article, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Save(ctx, article)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Article), nil
}

// DeleteArticle serializes article deletion
func (m *DBManager) DeleteArticle(repo ArticleRepository, ctx context.Context, id string) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteByID(ctx, id)
	})
}

// CountArticles serializes the article count
func (m *DBManager) CountArticles(repo ArticleRepository, ctx context.Context) (int, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Count(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// FindUser serializes a user lookup built from any UserRepository finder
func (m *DBManager) FindUser(find func() (*models.User, error)) (*models.User, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return find()
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// CreateUserIfAbsent checks for an existing username and inserts the new user
// as one serialized operation. It returns ErrDuplicate when the name is taken.
func (m *DBManager) CreateUserIfAbsent(repo UserRepository, ctx context.Context, username, password string) (*models.User, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		_, err := repo.FindByUsername(ctx, username)
		if err == nil {
			return nil, ErrDuplicate
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return repo.Create(ctx, username, password)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// CountUsers serializes the user count
func (m *DBManager) CountUsers(repo UserRepository, ctx context.Context) (int, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Count(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// CreateEventLog serializes an event log append
func (m *DBManager) CreateEventLog(repo EventLogRepository, ctx context.Context, eventLog *models.EventLog) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, eventLog)
	})
}

// FindEventLogs serializes an event log query built from any EventLogRepository finder
func (m *DBManager) FindEventLogs(find func() ([]*models.EventLog, error)) ([]*models.EventLog, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return find()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.EventLog), nil
}
