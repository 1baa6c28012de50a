package services

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoals(t *testing.T) *GoalService {
	t.Helper()
	return NewGoalService(memory.New())
}

func goalDraft(name string, target int64, deadline core.Date) core.Goal {
	return core.Goal{
		Name:         name,
		TargetAmount: decimal.NewFromInt(target),
		Deadline:     deadline,
	}
}

func TestGoalService_AddGoal(t *testing.T) {
	svc := newGoals(t)

	g, err := svc.AddGoal(context.Background(), "user-1", goalDraft("Vacation", 1000, core.NewDate(2026, 6, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "user-1", g.UserID)
	assert.Equal(t, core.PriorityMedium, g.Priority, "priority defaults to medium")
}

func TestGoalService_AddGoal_Invalid(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	_, err := svc.AddGoal(ctx, "user-1", goalDraft("", 1000, core.NewDate(2026, 6, 1)))
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = svc.AddGoal(ctx, "user-1", goalDraft("Vacation", 0, core.NewDate(2026, 6, 1)))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestGoalService_RequiresUser(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	_, err := svc.AddGoal(ctx, "", goalDraft("Vacation", 1000, core.NewDate(2026, 6, 1)))
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	_, err = svc.ListGoals(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	_, err = svc.Progress(ctx, "", "some-id")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestGoalService_SetProgress(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	g, err := svc.AddGoal(ctx, "user-1", goalDraft("Vacation", 1000, core.NewDate(2026, 6, 1)))
	require.NoError(t, err)

	updated, err := svc.SetProgress(ctx, "user-1", g.ID, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(250)))

	// The amount replaces the previous value, it is not additive.
	updated, err = svc.SetProgress(ctx, "user-1", g.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(100)))
}

func TestGoalService_SetProgress_Negative(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	g, err := svc.AddGoal(ctx, "user-1", goalDraft("Vacation", 1000, core.NewDate(2026, 6, 1)))
	require.NoError(t, err)

	_, err = svc.SetProgress(ctx, "user-1", g.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestGoalService_SetProgress_UnknownGoal(t *testing.T) {
	svc := newGoals(t)

	_, err := svc.SetProgress(context.Background(), "user-1", "missing", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGoalService_Progress(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	deadline := core.DateOf(time.Now().AddDate(0, 0, 30))
	g, err := svc.AddGoal(ctx, "user-1", goalDraft("Vacation", 1000, deadline))
	require.NoError(t, err)

	_, err = svc.SetProgress(ctx, "user-1", g.ID, decimal.NewFromInt(400))
	require.NoError(t, err)

	p, err := svc.Progress(ctx, "user-1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, p.ProgressPercentage)
	assert.True(t, p.RemainingAmount.Equal(decimal.NewFromInt(600)))
	assert.False(t, p.IsCompleted)
	assert.Positive(t, p.DaysRemaining)
}

func TestGoalService_DeleteGoal(t *testing.T) {
	svc := newGoals(t)
	ctx := context.Background()

	g, err := svc.AddGoal(ctx, "user-1", goalDraft("Vacation", 1000, core.NewDate(2026, 6, 1)))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGoal(ctx, "user-1", g.ID))

	_, err = svc.GetGoal(ctx, "user-1", g.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
