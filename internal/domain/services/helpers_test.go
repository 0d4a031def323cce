package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRegistry opens a seeded registry backed by a temp SQLite file
func newTestRegistry(t *testing.T) *PropertyService {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "registry_test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "auto"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	registry := NewPropertyService(db, zap.NewNop())
	require.NoError(t, registry.SeedIfEmpty(context.Background()))
	return registry
}

// recordingSink captures delivered jobs and optionally fails them
type recordingSink struct {
	name string
	err  error
	jobs chan NotificationJob
}

func newRecordingSink(err error) *recordingSink {
	return &recordingSink{name: "recording", err: err, jobs: make(chan NotificationJob, 16)}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, job NotificationJob) error {
	s.jobs <- job
	return s.err
}

func (s *recordingSink) next(t *testing.T) NotificationJob {
	t.Helper()
	select {
	case job := <-s.jobs:
		return job
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return NotificationJob{}
	}
}

func sensorStatuses(p *models.Property) []models.SensorStatus {
	out := make([]models.SensorStatus, 0, len(p.Sensors))
	for _, s := range p.Sensors {
		out = append(out, s.Status)
	}
	return out
}
