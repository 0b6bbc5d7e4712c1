package eventlog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wikicms/db"
	"wikicms/models"
)

type EventLogService struct {
	Repository db.EventLogRepository
	dbManager  *db.DBManager
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewEventLogService(repo db.EventLogRepository, dbManager *db.DBManager, logger *zap.SugaredLogger) *EventLogService {
	return &EventLogService{
		Repository: repo,
		dbManager:  dbManager,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *EventLogService) GetAll(ctx context.Context, limit int) ([]*models.EventLog, error) {
	eventLogs, err := s.dbManager.FindEventLogs(func() ([]*models.EventLog, error) {
		return s.Repository.FindLatest(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	for _, eventLog := range eventLogs {
		eventLog.Description = generateDescription(eventLog)
	}
	return eventLogs, nil
}

func (s *EventLogService) GetAllByArticleID(ctx context.Context, articleID string, limit int) ([]*models.EventLog, error) {
	eventLogs, err := s.dbManager.FindEventLogs(func() ([]*models.EventLog, error) {
		return s.Repository.FindAllByArticleID(ctx, articleID, limit)
	})
	if err != nil {
		return nil, err
	}
	for _, eventLog := range eventLogs {
		eventLog.Description = generateDescription(eventLog)
	}
	return eventLogs, nil
}

func (s *EventLogService) CreateOne(ctx context.Context, eventLog *models.EventLog) error {
	now := s.now()
	eventLog.CreatedAt = &now
	return s.dbManager.CreateEventLog(s.Repository, ctx, eventLog)
}

// Record appends an event and logs, rather than returns, a failure. Losing
// an activity entry never fails the request that caused it.
func (s *EventLogService) Record(ctx context.Context, eventType models.EEventLogType, articleID, userID string) {
	eventLog := &models.EventLog{Type: eventType}
	if articleID != "" {
		eventLog.ArticleID = &articleID
	}
	if userID != "" {
		eventLog.UserID = &userID
	}
	if err := s.CreateOne(ctx, eventLog); err != nil {
		s.logger.Warnw("Failed to record event", "type", eventType, "error", err)
	}
}

func generateDescription(eventLog *models.EventLog) string {
	articleInfo := "unknown article"
	if eventLog.ArticleID != nil {
		articleInfo = *eventLog.ArticleID
	}
	userInfo := "unknown user"
	if eventLog.UserID != nil {
		userInfo = *eventLog.UserID
	}

	switch eventLog.Type {
	case models.ArticleCreated:
		return fmt.Sprintf("Article [%s] created", articleInfo)
	case models.ArticleUpdated:
		return fmt.Sprintf("Article [%s] updated", articleInfo)
	case models.ArticleDeleted:
		return fmt.Sprintf("Article [%s] deleted", articleInfo)
	case models.UserRegistered:
		return fmt.Sprintf("User [%s] registered", userInfo)
	case models.UserLoggedIn:
		return fmt.Sprintf("User [%s] logged in", userInfo)
	case models.UserLoggedOut:
		return fmt.Sprintf("User [%s] logged out", userInfo)
	case models.LoginFailed:
		return "Login attempt failed"
	default:
		return "Event occurred"
	}
}
