package generator

import (
	"context"
	"errors"
	"fmt"
)

// Transaction executes a set of operations all-or-nothing.
type Transaction struct {
	operations []Operation
	done       []Operation
	committed  bool
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{operations: make([]Operation, 0)}
}

// Add stages an operation.
func (t *Transaction) Add(op Operation) {
	t.operations = append(t.operations, op)
}

// Len returns the number of staged operations.
func (t *Transaction) Len() int {
	return len(t.operations)
}

// Commit executes the staged operations in order. When one fails, the ones
// already executed are reverted in reverse order.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	for _, op := range t.operations {
		if err := op.Execute(ctx); err != nil {
			t.done = append(t.done, op)
			if rbErr := t.rollback(); rbErr != nil {
				return errors.Join(fmt.Errorf("%s: %w", op.Description(), err), fmt.Errorf("rollback: %w", rbErr))
			}
			return fmt.Errorf("%s: %w", op.Description(), err)
		}
		t.done = append(t.done, op)
	}

	t.committed = true
	return nil
}

func (t *Transaction) rollback() error {
	var errs []error
	for i := len(t.done) - 1; i >= 0; i-- {
		if r, ok := t.done[i].(Reverter); ok {
			if err := r.Revert(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	t.done = nil
	return errors.Join(errs...)
}
