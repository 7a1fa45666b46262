package records

import (
	"context"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

func (s *Service) Expenses(ctx context.Context) ([]store.Expense, error) {
	return read(ctx, s, key("expenses", "all"), s.store.ListExpenses)
}

// ExpensesBetween returns expenses dated within [from, to].
func (s *Service) ExpensesBetween(ctx context.Context, from, to time.Time) ([]store.Expense, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return read(ctx, s, rangeKey("expenses", "between", from, to), func(ctx context.Context) ([]store.Expense, error) {
		return s.store.ListExpensesBetween(ctx, from, to)
	})
}

func (s *Service) Expense(ctx context.Context, id string) (store.Expense, error) {
	return read(ctx, s, key("expenses", id), func(ctx context.Context) (store.Expense, error) {
		return s.store.GetExpense(ctx, id)
	})
}

func (s *Service) CreateExpense(ctx context.Context, expense store.Expense) (store.Expense, error) {
	return write(ctx, s, "create expense", func(ctx context.Context) (store.Expense, error) {
		return s.store.CreateExpense(ctx, expense)
	})
}

func (s *Service) UpdateExpense(ctx context.Context, expense store.Expense) (store.Expense, error) {
	return write(ctx, s, "update expense", func(ctx context.Context) (store.Expense, error) {
		return s.store.UpdateExpense(ctx, expense)
	})
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete expense", deleted(func(ctx context.Context) error {
		return s.store.DeleteExpense(ctx, id)
	}))
	return err
}
