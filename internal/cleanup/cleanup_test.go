package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/testutil"
)

func TestRunOncePrunesStaleResets(t *testing.T) {
	db := testutil.NewDB(t)
	profile := testutil.CreateProfile(t, db)
	now := time.Now().UTC()
	used := now.Add(-time.Minute)

	resets := []models.PasswordReset{
		{ProfileID: profile.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)},
		{ProfileID: profile.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)},
		{ProfileID: profile.ID, TokenHash: "used", ExpiresAt: now.Add(time.Hour), UsedAt: &used},
	}
	require.NoError(t, db.Create(&resets).Error)

	svc := NewService(repository.NewPasswordResetRepository(db), time.Hour)
	svc.now = func() time.Time { return now }

	assert.EqualValues(t, 2, svc.RunOnce(context.Background()))

	var left []models.PasswordReset
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].TokenHash)

	assert.EqualValues(t, 0, svc.RunOnce(context.Background()))
}

type countingPruner struct {
	calls atomic.Int32
	err   error
}

func (p *countingPruner) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	p.calls.Add(1)
	return 0, p.err
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	pruner := &countingPruner{}
	svc := NewService(pruner, time.Hour)

	svc.Start(context.Background())
	assert.True(t, testutil.Eventually(t, func() bool { return pruner.calls.Load() == 1 }))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))
}

func TestStopWithoutStart(t *testing.T) {
	svc := NewService(&countingPruner{}, time.Hour)
	assert.NoError(t, svc.Stop(context.Background()))
}

func TestRunOnceSurvivesErrors(t *testing.T) {
	svc := NewService(&countingPruner{err: errors.New("db down")}, time.Hour)
	assert.EqualValues(t, 0, svc.RunOnce(context.Background()))
}
