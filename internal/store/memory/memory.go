// Package memory is an in-process store used as the default backend and
// by tests. All records live behind one mutex; copies go in and out so
// callers never share mutable state with the store.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	nextID  int
	txs     map[string]core.Transaction // keyed by id
	budgets map[string]core.Budget      // keyed by userID_yearMonth
	goals   map[string]core.Goal        // keyed by id
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:     make(map[string]core.Transaction),
		budgets: make(map[string]core.Budget),
		goals:   make(map[string]core.Goal),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) nextRef(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s:%s", prefix, strconv.Itoa(s.nextID))
}

func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = s.nextRef("mem")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.txs[tx.ID] = tx
	return tx.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.txs[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return core.ErrNotFound
	}
	tx.CreatedAt = existing.CreatedAt
	s.txs[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			owned = append(owned, tx)
		}
	}
	return engine.Select(owned, f), nil
}

func (s *Store) GetBudget(_ context.Context, userID, yearMonth string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[core.BudgetKey(userID, yearMonth)]
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return copyBudget(b), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := core.BudgetKey(b.UserID, b.YearMonth)
	now := time.Now()
	if existing, ok := s.budgets[key]; ok {
		b.CreatedAt = existing.CreatedAt
	} else {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.budgets[key] = copyBudget(b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, yearMonth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := core.BudgetKey(userID, yearMonth)
	if _, ok := s.budgets[key]; !ok {
		return core.ErrNotFound
	}
	delete(s.budgets, key)
	return nil
}

func (s *Store) AddGoal(_ context.Context, g core.Goal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = s.nextRef("goal")
	}
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	s.goals[g.ID] = g
	return g.ID, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, core.ErrNotFound
	}
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return core.ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now()
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func copyBudget(b core.Budget) core.Budget {
	categories := make(map[string]decimal.Decimal, len(b.Categories))
	for name, amount := range b.Categories {
		categories[name] = amount
	}
	b.Categories = categories
	return b
}
