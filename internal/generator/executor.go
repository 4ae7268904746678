package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures Execute.
type ExecuteOptions struct {
	DryRun bool
	Writer io.Writer // defaults to os.Stdout
}

// Execute validates every operation, then either describes them (dry run)
// or commits them in one transaction.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	tx := NewTransaction()
	for _, op := range ops {
		tx.Add(op)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}
