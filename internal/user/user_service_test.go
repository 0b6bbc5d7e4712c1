package user

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wikicms/internal/config"
	"wikicms/internal/testutils"
)

func newTestService(t *testing.T, driver config.StoreDriver) *UserService {
	t.Helper()
	repo := testutils.SetupTestRepositoryFactory(t, driver).NewUserRepository()
	return NewUserService(repo, testutils.SetupTestDBManager(t), zap.NewNop().Sugar())
}

func TestUserService_Seed(t *testing.T) {
	for _, driver := range []config.StoreDriver{config.Memory, config.SQLite} {
		t.Run(string(driver), func(t *testing.T) {
			svc := newTestService(t, driver)
			ctx := context.Background()
			require.NoError(t, svc.Seed(ctx))

			hora, err := svc.FindByCredentials(ctx, "hora", "123")
			require.NoError(t, err)
			assert.Equal(t, "1", hora.ID)

			lani, err := svc.FindByCredentials(ctx, "lani", "456")
			require.NoError(t, err)
			assert.Equal(t, "2", lani.ID)

			// seeding again must not add anyone
			require.NoError(t, svc.Seed(ctx))
			count, err := svc.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}

func TestUserService_Register(t *testing.T) {
	svc := newTestService(t, config.Memory)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	t.Run("IDs_Increase", func(t *testing.T) {
		prev := 2
		for i := 0; i < 3; i++ {
			u, err := svc.Register(ctx, testutils.UniqueUsername(), "pw")
			require.NoError(t, err)
			id, err := strconv.Atoi(u.ID)
			require.NoError(t, err)
			assert.Equal(t, prev+1, id)
			prev = id
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		before, err := svc.Count(ctx)
		require.NoError(t, err)

		_, err = svc.Register(ctx, "hora", "anything")
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		after, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Lookups", func(t *testing.T) {
		name := testutils.UniqueUsername()
		created, err := svc.Register(ctx, name, "secret")
		require.NoError(t, err)

		byName, err := svc.FindByUsername(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)

		byID, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, name, byID.Username)

		_, err = svc.GetByID(ctx, "12345")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.FindByCredentials(ctx, name, "wrong")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_ConcurrentRegisterDistinctIDs(t *testing.T) {
	svc := newTestService(t, config.Memory)
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := svc.Register(ctx, testutils.UniqueUsername(), "pw")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[u.ID], "id %s handed out twice", u.ID)
			seen[u.ID] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 25)
}
