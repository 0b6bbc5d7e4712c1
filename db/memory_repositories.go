package db

import (
	"context"
	"sort"
	"strconv"

	"wikicms/models"
)

// The memory repositories hold plain maps and are not safe for concurrent
// use on their own. Services reach them through DBManager, which runs one
// operation at a time.

// MemoryArticleRepository keeps articles in a map keyed by ID
type MemoryArticleRepository struct {
	articles map[string]*models.Article
}

// NewMemoryArticleRepository creates an empty MemoryArticleRepository
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{articles: make(map[string]*models.Article)}
}

// Close releases nothing; the data is dropped with the repository
func (r *MemoryArticleRepository) Close() error {
	return nil
}

// FindAll returns copies of all articles ordered by ID
func (r *MemoryArticleRepository) FindAll(ctx context.Context) ([]*models.Article, error) {
	articles := make([]*models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		c := *a
		articles = append(articles, &c)
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
	return articles, nil
}

// FindByID finds an article by ID
func (r *MemoryArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

// Save inserts or overwrites the article at article.ID
func (r *MemoryArticleRepository) Save(ctx context.Context, article *models.Article) (*models.Article, error) {
	stored := *article
	r.articles[article.ID] = &stored
	c := stored
	return &c, nil
}

// DeleteByID removes the article if present
func (r *MemoryArticleRepository) DeleteByID(ctx context.Context, id string) error {
	delete(r.articles, id)
	return nil
}

// Count returns the number of stored articles
func (r *MemoryArticleRepository) Count(ctx context.Context) (int, error) {
	return len(r.articles), nil
}

// MemoryUserRepository keeps users in insertion order with a monotonic ID counter
type MemoryUserRepository struct {
	users  map[string]*models.User
	order  []string
	nextID int
}

// NewMemoryUserRepository creates an empty MemoryUserRepository whose first ID is "1"
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

// Close releases nothing; the data is dropped with the repository
func (r *MemoryUserRepository) Close() error {
	return nil
}

// FindAll returns copies of all users in insertion order
func (r *MemoryUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(r.order))
	for _, id := range r.order {
		c := *r.users[id]
		users = append(users, &c)
	}
	return users, nil
}

// FindByID finds a user by ID
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// FindByUsername returns the first user with an exactly matching username
func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.scan(func(u *models.User) bool {
		return u.Username == username
	})
}

// FindByCredentials returns the first user whose username and password both match exactly
func (r *MemoryUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return r.scan(func(u *models.User) bool {
		return u.Username == username && u.Password == password
	})
}

func (r *MemoryUserRepository) scan(match func(u *models.User) bool) (*models.User, error) {
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new user under the next identifier
func (r *MemoryUserRepository) Create(ctx context.Context, username, password string) (*models.User, error) {
	id := strconv.Itoa(r.nextID)
	r.nextID++

	u := &models.User{ID: id, Username: username, Password: password}
	r.users[id] = u
	r.order = append(r.order, id)

	c := *u
	return &c, nil
}

// Count returns the number of stored users
func (r *MemoryUserRepository) Count(ctx context.Context) (int, error) {
	return len(r.order), nil
}

// MemoryEventLogRepository appends events to a slice
type MemoryEventLogRepository struct {
	events []models.EventLog
}

func NewMemoryEventLogRepository() *MemoryEventLogRepository {
	return &MemoryEventLogRepository{}
}

func (r *MemoryEventLogRepository) Close() error {
	return nil
}

func (r *MemoryEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	r.events = append(r.events, *eventLog)
	return nil
}

func (r *MemoryEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	return r.newest(limit, func(*models.EventLog) bool { return true }), nil
}

func (r *MemoryEventLogRepository) FindAllByArticleID(ctx context.Context, articleID string, limit int) ([]*models.EventLog, error) {
	return r.newest(limit, func(e *models.EventLog) bool {
		return e.ArticleID != nil && *e.ArticleID == articleID
	}), nil
}

// newest walks the log backwards so later appends come first
func (r *MemoryEventLogRepository) newest(limit int, match func(*models.EventLog) bool) []*models.EventLog {
	events := make([]*models.EventLog, 0)
	for i := len(r.events) - 1; i >= 0 && len(events) < limit; i-- {
		if match(&r.events[i]) {
			c := r.events[i]
			events = append(events, &c)
		}
	}
	return events
}
