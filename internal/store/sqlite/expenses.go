package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

const expenseColumns = `id, date, category, description, amount, payment_method, status,
       created_at, updated_at`

func scanExpense(row rowScanner) (store.Expense, error) {
	var (
		expense   store.Expense
		date      int64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&expense.ID,
		&date,
		&expense.Category,
		&expense.Description,
		&expense.Amount,
		&expense.PaymentMethod,
		&expense.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Expense{}, err
	}
	expense.Date = fromMillis(date)
	expense.CreatedAt = fromMillis(createdAt)
	expense.UpdatedAt = fromMillis(updatedAt)
	return expense, nil
}

// ListExpenses returns every expense, newest first.
func (s *Store) ListExpenses(ctx context.Context) ([]store.Expense, error) {
	return queryAll(ctx, s, "list expenses", scanExpense,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id`)
}

// ListExpensesBetween returns expenses dated within [from, to], newest first.
func (s *Store) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]store.Expense, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end is before its start", store.ErrInvalid)
	}
	return queryAll(ctx, s, "list expenses between", scanExpense,
		`SELECT `+expenseColumns+` FROM expenses WHERE date >= ? AND date <= ? ORDER BY date DESC, id`,
		toMillis(from), toMillis(to))
}

// GetExpense returns one expense by id.
func (s *Store) GetExpense(ctx context.Context, id string) (store.Expense, error) {
	if err := ctx.Err(); err != nil {
		return store.Expense{}, err
	}
	if err := requireID(id); err != nil {
		return store.Expense{}, err
	}
	expense, err := scanExpense(s.sqlDB.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return store.Expense{}, translate("get expense", err)
	}
	return expense, nil
}

// CreateExpense inserts expense with a fresh id.
func (s *Store) CreateExpense(ctx context.Context, expense store.Expense) (store.Expense, error) {
	if err := ctx.Err(); err != nil {
		return store.Expense{}, err
	}
	expense.Category = strings.TrimSpace(expense.Category)
	if expense.Status == "" {
		expense.Status = store.ExpensePending
	}
	if err := expense.Validate(); err != nil {
		return store.Expense{}, err
	}
	expense.ID = s.newID()
	expense.CreatedAt = s.now()
	expense.UpdatedAt = expense.CreatedAt

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		toMillis(expense.Date),
		expense.Category,
		expense.Description,
		expense.Amount,
		expense.PaymentMethod,
		string(expense.Status),
		toMillis(expense.CreatedAt),
		toMillis(expense.UpdatedAt),
	)
	if err != nil {
		return store.Expense{}, translate("create expense", err)
	}
	return s.GetExpense(ctx, expense.ID)
}

// UpdateExpense replaces every mutable field of the expense with expense.ID.
func (s *Store) UpdateExpense(ctx context.Context, expense store.Expense) (store.Expense, error) {
	if err := ctx.Err(); err != nil {
		return store.Expense{}, err
	}
	if err := requireID(expense.ID); err != nil {
		return store.Expense{}, err
	}
	expense.Category = strings.TrimSpace(expense.Category)
	if err := expense.Validate(); err != nil {
		return store.Expense{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE expenses
		    SET date = ?, category = ?, description = ?, amount = ?, payment_method = ?,
		        status = ?, updated_at = ?
		  WHERE id = ?`,
		toMillis(expense.Date),
		expense.Category,
		expense.Description,
		expense.Amount,
		expense.PaymentMethod,
		string(expense.Status),
		toMillis(s.now()),
		expense.ID,
	)
	if err != nil {
		return store.Expense{}, translate("update expense", err)
	}
	if err := expectOne("update expense", res); err != nil {
		return store.Expense{}, err
	}
	return s.GetExpense(ctx, expense.ID)
}

// DeleteExpense removes the expense.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return translate("delete expense", err)
	}
	return expectOne("delete expense", res)
}
