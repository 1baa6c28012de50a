package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalService manages savings goals and their progress math.
type GoalService struct {
	goals store.GoalStore
}

func NewGoalService(goals store.GoalStore) *GoalService {
	return &GoalService{goals: goals}
}

// AddGoal stores a new goal and returns it with its assigned id.
func (s *GoalService) AddGoal(ctx context.Context, userID string, g core.Goal) (core.Goal, error) {
	if userID == "" {
		return core.Goal{}, core.ErrUnauthenticated
	}

	g.ID = uuid.NewString()
	g.UserID = userID
	g.CreatedAt = time.Now().UTC()
	if g.Priority == "" {
		g.Priority = core.PriorityMedium
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	id, err := s.goals.AddGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	g.ID = id
	return g, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	if userID == "" {
		return core.Goal{}, core.ErrUnauthenticated
	}
	return s.goals.GetGoal(ctx, userID, id)
}

func (s *GoalService) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	return s.goals.ListGoals(ctx, userID)
}

func (s *GoalService) UpdateGoal(ctx context.Context, userID string, g core.Goal) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	g.UserID = userID
	if err := g.Validate(); err != nil {
		return err
	}
	g.UpdatedAt = time.Now().UTC()
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return err
	}
	return nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	return s.goals.DeleteGoal(ctx, userID, id)
}

// SetProgress sets the goal's saved amount to the given value. The amount
// replaces the previous one; it is not added to it.
func (s *GoalService) SetProgress(ctx context.Context, userID, id string, amount decimal.Decimal) (core.Goal, error) {
	if userID == "" {
		return core.Goal{}, core.ErrUnauthenticated
	}
	if amount.IsNegative() {
		return core.Goal{}, core.ErrInvalidAmount
	}

	g, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return core.Goal{}, err
	}
	g.CurrentAmount = amount
	g.UpdatedAt = time.Now().UTC()
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("update goal progress: %w", err)
	}
	return g, nil
}

// Progress computes the goal's progress snapshot as of now.
func (s *GoalService) Progress(ctx context.Context, userID, id string) (engine.GoalProgress, error) {
	if userID == "" {
		return engine.GoalProgress{}, core.ErrUnauthenticated
	}
	g, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return engine.GoalProgress{}, err
	}
	return engine.ProgressOf(g, time.Now()), nil
}
