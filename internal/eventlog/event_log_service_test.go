package eventlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wikicms/internal/config"
	"wikicms/internal/testutils"
	"wikicms/models"
)

func newTestService(t *testing.T, driver config.StoreDriver) *EventLogService {
	t.Helper()
	repo := testutils.SetupTestRepositoryFactory(t, driver).NewEventLogRepository()
	svc := NewEventLogService(repo, testutils.SetupTestDBManager(t), zap.NewNop().Sugar())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestEventLogService(t *testing.T) {
	for _, driver := range []config.StoreDriver{config.Memory, config.SQLite} {
		t.Run(string(driver), func(t *testing.T) {
			svc := newTestService(t, driver)
			ctx := context.Background()

			svc.Record(ctx, models.ArticleCreated, "wiki", "")
			svc.Record(ctx, models.UserLoggedIn, "", "1")
			svc.Record(ctx, models.ArticleUpdated, "wiki", "")
			svc.Record(ctx, models.ArticleCreated, "other", "")

			latest, err := svc.GetAll(ctx, 10)
			require.NoError(t, err)
			require.Len(t, latest, 4)
			assert.Equal(t, "Article [other] created", latest[0].Description)
			assert.Equal(t, "User [1] logged in", latest[2].Description)
			require.NotNil(t, latest[0].CreatedAt)
			assert.True(t, latest[0].CreatedAt.After(*latest[3].CreatedAt))

			limited, err := svc.GetAll(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			history, err := svc.GetAllByArticleID(ctx, "wiki", 8)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, models.ArticleUpdated, history[0].Type)
			assert.Equal(t, models.ArticleCreated, history[1].Type)

			none, err := svc.GetAllByArticleID(ctx, "missing", 8)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestGenerateDescription(t *testing.T) {
	id := "wiki"
	assert.Equal(t, "Article [wiki] deleted", generateDescription(&models.EventLog{Type: models.ArticleDeleted, ArticleID: &id}))
	assert.Equal(t, "User [unknown user] registered", generateDescription(&models.EventLog{Type: models.UserRegistered}))
	assert.Equal(t, "Login attempt failed", generateDescription(&models.EventLog{Type: models.LoginFailed}))
	assert.Equal(t, "Event occurred", generateDescription(&models.EventLog{Type: "something else"}))
}

func TestEventLogHandlers(t *testing.T) {
	svc := newTestService(t, config.Memory)
	ctx := context.Background()
	svc.Record(ctx, models.ArticleCreated, "a/b", "")
	svc.Record(ctx, models.ArticleCreated, "wiki", "")

	r := mux.NewRouter()
	r.UseEncodedPath()
	NewEventLogHandlers(svc).Register(r)

	decode := func(path string) []models.EventLog {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var out []models.EventLog
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	assert.Len(t, decode("/event-log"), 2)

	byArticle := decode("/event-log/a%2Fb")
	require.Len(t, byArticle, 1)
	assert.Equal(t, "Article [a/b] created", byArticle[0].Description)
}
