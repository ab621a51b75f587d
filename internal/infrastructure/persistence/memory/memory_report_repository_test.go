package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

func TestMemoryReportRepository_SaveAndFind(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	id := values.NewRunID()
	report := execution.NewReportWithID(id, "opentype")

	err := repo.Save(ctx, report)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report.ProfileName, found.ProfileName)
	assert.True(t, found.RunID.Equals(id))

	_, err = repo.FindByID(ctx, values.NewRunID())
	assert.Error(t, err)
}

func TestMemoryReportRepository_FindByProfile(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	now := time.Now()
	r1 := execution.NewReport("profile-a")
	r1.StartTime = now.Add(-3 * time.Hour)
	r2 := execution.NewReport("profile-a")
	r2.StartTime = now.Add(-2 * time.Hour)
	r3 := execution.NewReport("profile-a")
	r3.StartTime = now.Add(-1 * time.Hour)

	r4 := execution.NewReport("profile-b")

	require.NoError(t, repo.Save(ctx, r1))
	require.NoError(t, repo.Save(ctx, r2))
	require.NoError(t, repo.Save(ctx, r3))
	require.NoError(t, repo.Save(ctx, r4))

	reports, err := repo.FindByProfile(ctx, "profile-a", 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, r3.RunID, reports[0].RunID) // Newest first
	assert.Equal(t, r2.RunID, reports[1].RunID)

	reports, err = repo.FindByProfile(ctx, "profile-a", 0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
}

func TestMemoryReportRepository_FindBetween(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	now := time.Now()
	start := now.Add(-2 * time.Hour)
	end := now.Add(-1 * time.Hour)

	r1 := execution.NewReport("profile-a")
	r1.StartTime = now.Add(-3 * time.Hour) // Before window

	r2 := execution.NewReport("profile-a")
	r2.StartTime = now.Add(-90 * time.Minute) // In window

	r3 := execution.NewReport("profile-a")
	r3.StartTime = now.Add(-30 * time.Minute) // After window

	require.NoError(t, repo.Save(ctx, r1))
	require.NoError(t, repo.Save(ctx, r2))
	require.NoError(t, repo.Save(ctx, r3))

	reports, err := repo.FindBetween(ctx, "profile-a", start, end)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, r2.RunID, reports[0].RunID)
}
