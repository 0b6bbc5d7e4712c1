package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"wikicms/db"
	"wikicms/internal/metrics"
	"wikicms/models"
)

var (
	ErrNotFound = errors.New("article not found")
	ErrEmptyID  = errors.New("article title yields an empty id")
)

// seedArticles are present in every freshly started store
var seedArticles = []models.Article{
	{
		ID:      "wiki",
		Title:   "The meaning of the word 'wiki'",
		Content: "'Wiki' means 'quick' in Olelo Hawai'i.",
	},
	{
		ID:      "instructions",
		Title:   "How to use a wiki",
		Content: "To use this wiki, add a new article from the home page, or click into any article to read, edit or delete it.",
	},
}

// EventRecorder receives an entry for every article mutation
type EventRecorder interface {
	Record(ctx context.Context, eventType models.EEventLogType, articleID, userID string)
}

type ArticleService struct {
	Repository db.ArticleRepository
	dbManager  *db.DBManager
	events     EventRecorder
	logger     *zap.SugaredLogger
}

// NewArticleService creates the service. events may be nil.
func NewArticleService(repo db.ArticleRepository, dbManager *db.DBManager, events EventRecorder, logger *zap.SugaredLogger) *ArticleService {
	return &ArticleService{
		Repository: repo,
		dbManager:  dbManager,
		events:     events,
		logger:     logger,
	}
}

// DeriveID returns the part of title before its first whitespace character
func DeriveID(title string) string {
	if i := strings.IndexFunc(title, unicode.IsSpace); i >= 0 {
		return title[:i]
	}
	return title
}

// Seed stores the default articles
func (s *ArticleService) Seed(ctx context.Context) error {
	for i := range seedArticles {
		if _, err := s.dbManager.SaveArticle(s.Repository, ctx, &seedArticles[i]); err != nil {
			return fmt.Errorf("seed article %q: %w", seedArticles[i].ID, err)
		}
	}
	s.refreshGauge(ctx)
	return nil
}

func (s *ArticleService) List(ctx context.Context) ([]*models.Article, error) {
	return s.dbManager.FindAllArticles(s.Repository, ctx)
}

func (s *ArticleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.dbManager.FindArticleByID(s.Repository, ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find article %q: %w", id, err)
	}
	return article, nil
}

// Create stores a new article under the ID derived from its title, replacing
// any article already stored there, and returns that ID.
func (s *ArticleService) Create(ctx context.Context, title, content string) (string, error) {
	id := DeriveID(title)
	if id == "" {
		return "", ErrEmptyID
	}

	article := &models.Article{ID: id, Title: title, Content: content}
	if _, err := s.dbManager.SaveArticle(s.Repository, ctx, article); err != nil {
		return "", fmt.Errorf("create article %q: %w", id, err)
	}

	s.logger.Infow("Article created", "id", id)
	metrics.RecordArticleChange("create")
	s.record(ctx, models.ArticleCreated, id)
	s.refreshGauge(ctx)
	return id, nil
}

// Update replaces the article stored at id. The ID is never re-derived from
// the new title.
func (s *ArticleService) Update(ctx context.Context, id, title, content string) error {
	article := &models.Article{ID: id, Title: title, Content: content}
	if _, err := s.dbManager.SaveArticle(s.Repository, ctx, article); err != nil {
		return fmt.Errorf("update article %q: %w", id, err)
	}

	s.logger.Infow("Article updated", "id", id)
	metrics.RecordArticleChange("update")
	s.record(ctx, models.ArticleUpdated, id)
	s.refreshGauge(ctx)
	return nil
}

// Delete removes the article at id. Missing IDs are ignored.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.dbManager.DeleteArticle(s.Repository, ctx, id); err != nil {
		return fmt.Errorf("delete article %q: %w", id, err)
	}

	s.logger.Infow("Article deleted", "id", id)
	metrics.RecordArticleChange("delete")
	s.record(ctx, models.ArticleDeleted, id)
	s.refreshGauge(ctx)
	return nil
}

func (s *ArticleService) record(ctx context.Context, eventType models.EEventLogType, id string) {
	if s.events != nil {
		s.events.Record(ctx, eventType, id, "")
	}
}

func (s *ArticleService) refreshGauge(ctx context.Context) {
	count, err := s.dbManager.CountArticles(s.Repository, ctx)
	if err != nil {
		s.logger.Warnw("Failed to count articles", "error", err)
		return
	}
	metrics.UpdateArticlesTotal(count)
}
