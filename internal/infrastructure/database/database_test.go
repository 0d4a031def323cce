package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionPool_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "pool_test.db"),
	}

	pool, err := NewConnectionPool(cfg)
	require.NoError(t, err)
	defer pool.Close()

	assert.NoError(t, pool.HealthCheck(context.Background()))

	stats, err := pool.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["max_open_connections"])
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
}

func TestMigrate_DropRecreatesTables(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "migrate_test.db"))
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "auto"))
	require.NoError(t, db.Create(&models.Property{
		ID:               "1",
		Address:          "ул. Ленина, 15, кв. 42",
		Number:           "1547",
		Status:           models.PropertyStatusArmed,
		LastStatusChange: time.Now(),
	}).Error)

	require.NoError(t, Migrate(db, "drop"))

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Zero(t, count)
}
