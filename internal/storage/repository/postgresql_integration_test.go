package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-plans/internal/migrations"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	"github.com/magabrotheeeer/subscription-plans/internal/storage"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("plans"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, migrationsPath))
	require.NoError(t, s.CheckDatabaseReady(ctx))

	return s
}

func TestIntegration_PlanLifecycle(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	created, err := s.CreatePlan(ctx, "test plan", decimal.NewFromInt(123))
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, created.Status)

	plans, err := s.ListPlans(ctx, models.PlanStatusActive)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "test plan", plans[0].Name)
	assert.True(t, decimal.NewFromInt(123).Equal(plans[0].Price))

	newName := "test plan 2"
	newPrice := decimal.NewFromInt(321)
	updated, err := s.UpdatePlan(ctx, created.ID, &newName, &newPrice)
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.True(t, newPrice.Equal(updated.Price))

	// частичное обновление не трогает цену
	onlyName := "renamed"
	renamed, err := s.UpdatePlan(ctx, created.ID, &onlyName, nil)
	require.NoError(t, err)
	assert.Equal(t, onlyName, renamed.Name)
	assert.True(t, newPrice.Equal(renamed.Price))

	retired, err := s.SetPlanStatus(ctx, created.ID, models.PlanStatusRetired)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusRetired, retired.Status)

	plans, err = s.ListPlans(ctx, models.PlanStatusActive)
	require.NoError(t, err)
	assert.Empty(t, plans)

	found, err := s.FindPlanByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusRetired, found.Status)

	_, err = s.UpdatePlan(ctx, created.ID, &newName, nil)
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)
}

func TestIntegration_NegativePriceRejected(t *testing.T) {
	s := setupTestDatabase(t)

	_, err := s.CreatePlan(context.Background(), "broken", decimal.NewFromInt(-5))
	assert.Error(t, err)
}

func TestIntegration_FindMissingPlan(t *testing.T) {
	s := setupTestDatabase(t)

	_, err := s.FindPlanByID(context.Background(), 404)
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)
}
