package web

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wikicms/internal/article"
	"wikicms/internal/auth"
	"wikicms/internal/eventlog"
	"wikicms/internal/session"
	"wikicms/internal/testutils"
	"wikicms/internal/user"
)

// newTestHandler wires a WebHandler over fresh seeded in-memory stores
func newTestHandler(t *testing.T) *WebHandler {
	t.Helper()
	return newTestHandlerWithRenderer(t, nil)
}

func newTestHandlerWithRenderer(t *testing.T, renderer Renderer) *WebHandler {
	t.Helper()

	cfg := testutils.GetTestConfig()
	logger := zap.NewNop().Sugar()
	factory := testutils.SetupTestRepositoryFactory(t, cfg.StoreDriver)
	manager := testutils.SetupTestDBManager(t)
	ctx := context.Background()

	events := eventlog.NewEventLogService(factory.NewEventLogRepository(), manager, logger)
	articles := article.NewArticleService(factory.NewArticleRepository(), manager, events, logger)
	require.NoError(t, articles.Seed(ctx))

	users := user.NewUserService(factory.NewUserRepository(), manager, logger)
	require.NoError(t, users.Seed(ctx))

	if renderer == nil {
		r, err := NewTemplateRenderer()
		require.NoError(t, err)
		renderer = r
	}

	carrier := session.NewCarrier(cfg.SessionKeys, cfg.SessionMaxAge, false, logger)
	return NewWebHandler(articles, auth.NewAuthService(users, events, logger), carrier, renderer, cfg, logger)
}
