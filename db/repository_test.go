package db_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikicms/db"
	"wikicms/internal/config"
	"wikicms/internal/testutils"
	"wikicms/models"
)

var drivers = []config.StoreDriver{config.Memory, config.SQLite}

func TestArticleRepository(t *testing.T) {
	for _, driver := range drivers {
		t.Run(string(driver), func(t *testing.T) {
			repo := testutils.SetupTestRepositoryFactory(t, driver).NewArticleRepository()
			ctx := context.Background()

			t.Run("FindByID_Missing", func(t *testing.T) {
				_, err := repo.FindByID(ctx, "nope")
				assert.ErrorIs(t, err, db.ErrNotFound)
			})

			t.Run("Save_ThenFind", func(t *testing.T) {
				want := testutils.CreateTestArticle()
				_, err := repo.Save(ctx, want)
				require.NoError(t, err)

				got, err := repo.FindByID(ctx, want.ID)
				require.NoError(t, err)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("article mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("Save_Overwrites", func(t *testing.T) {
				_, err := repo.Save(ctx, &models.Article{ID: "Test", Title: "Replaced", Content: "new body"})
				require.NoError(t, err)

				got, err := repo.FindByID(ctx, "Test")
				require.NoError(t, err)
				assert.Equal(t, "Replaced", got.Title)

				count, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, 1, count)
			})

			t.Run("FindAll_OrderedByID", func(t *testing.T) {
				_, err := repo.Save(ctx, &models.Article{ID: "Alpha", Title: "Alpha one", Content: "a"})
				require.NoError(t, err)

				all, err := repo.FindAll(ctx)
				require.NoError(t, err)
				ids := []string{}
				for _, a := range all {
					ids = append(ids, a.ID)
				}
				assert.Equal(t, []string{"Alpha", "Test"}, ids)
			})

			t.Run("Returned_Records_Are_Copies", func(t *testing.T) {
				got, err := repo.FindByID(ctx, "Alpha")
				require.NoError(t, err)
				got.Title = "mutated"

				again, err := repo.FindByID(ctx, "Alpha")
				require.NoError(t, err)
				assert.Equal(t, "Alpha one", again.Title)
			})

			t.Run("DeleteByID_Idempotent", func(t *testing.T) {
				require.NoError(t, repo.DeleteByID(ctx, "Alpha"))
				require.NoError(t, repo.DeleteByID(ctx, "Alpha"))

				_, err := repo.FindByID(ctx, "Alpha")
				assert.ErrorIs(t, err, db.ErrNotFound)
			})
		})
	}
}

func TestUserRepository(t *testing.T) {
	for _, driver := range drivers {
		t.Run(string(driver), func(t *testing.T) {
			repo := testutils.SetupTestRepositoryFactory(t, driver).NewUserRepository()
			ctx := context.Background()

			first, err := repo.Create(ctx, "hora", "123")
			require.NoError(t, err)
			assert.Equal(t, "1", first.ID)

			t.Run("IDs_StrictlyIncrease", func(t *testing.T) {
				prev := 1
				for _, name := range []string{"a", "b", "c"} {
					u, err := repo.Create(ctx, name, "pw")
					require.NoError(t, err)
					id, err := strconv.Atoi(u.ID)
					require.NoError(t, err)
					assert.Greater(t, id, prev)
					prev = id
				}
			})

			t.Run("FindByCredentials", func(t *testing.T) {
				u, err := repo.FindByCredentials(ctx, "hora", "123")
				require.NoError(t, err)
				assert.Equal(t, "1", u.ID)

				_, err = repo.FindByCredentials(ctx, "hora", "wrong")
				assert.ErrorIs(t, err, db.ErrNotFound)

				_, err = repo.FindByCredentials(ctx, "HORA", "123")
				assert.ErrorIs(t, err, db.ErrNotFound, "usernames are case-sensitive")
			})

			t.Run("FindByUsername", func(t *testing.T) {
				u, err := repo.FindByUsername(ctx, "b")
				require.NoError(t, err)
				assert.Equal(t, "b", u.Username)

				_, err = repo.FindByUsername(ctx, "zed")
				assert.ErrorIs(t, err, db.ErrNotFound)
			})

			t.Run("FindByID", func(t *testing.T) {
				u, err := repo.FindByID(ctx, "1")
				require.NoError(t, err)
				assert.Equal(t, "hora", u.Username)

				_, err = repo.FindByID(ctx, "999")
				assert.ErrorIs(t, err, db.ErrNotFound)

				_, err = repo.FindByID(ctx, "not-a-number")
				assert.ErrorIs(t, err, db.ErrNotFound)
			})

			t.Run("FindAll_InsertionOrder", func(t *testing.T) {
				all, err := repo.FindAll(ctx)
				require.NoError(t, err)
				names := []string{}
				for _, u := range all {
					names = append(names, u.Username)
				}
				assert.Equal(t, []string{"hora", "a", "b", "c"}, names)

				count, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, 4, count)
			})
		})
	}
}
