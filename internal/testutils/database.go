package testutils

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"wikicms/db"
	"wikicms/internal/config"
)

// SetupTestDatabase opens a private in-memory sqlite database with the schema applied
func SetupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.ConnectToSQLite(db.MemoryDSN)
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// SetupTestRepositoryFactory returns a sqlite-backed factory, or a memory one
// when driver is config.Memory
func SetupTestRepositoryFactory(t *testing.T, driver config.StoreDriver) *db.RepositoryFactory {
	t.Helper()
	if driver == config.SQLite {
		return db.NewRepositoryFactory(SetupTestDatabase(t))
	}
	return db.NewRepositoryFactory(nil)
}

// SetupTestDBManager starts a DBManager that is stopped when the test ends
func SetupTestDBManager(t *testing.T) *db.DBManager {
	t.Helper()
	m := db.NewDBManager()
	t.Cleanup(m.Stop)
	return m
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		SessionKeys:    [][]byte{[]byte("test_session_key_one"), []byte("test_session_key_two")},
		SessionMaxAge:  config.DefaultSessionMaxAge,
		StoreDriver:    config.Memory,
		SQLitePath:     config.DefaultSQLitePath,
		LogLevel:       "debug",
		MetricsEnabled: true,
	}
}
