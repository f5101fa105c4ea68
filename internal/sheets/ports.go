package sheets

import (
	"context"

	"dime/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionWriter mirrors a transaction to the export target. Writing
	// an ID that was exported before replaces the previous row.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction, categoryName string) (rowRef string, err error)
	}

	// TransactionDeleter removes a previously exported transaction. Deleting
	// an ID that was never exported is not an error.
	TransactionDeleter interface {
		Delete(ctx context.Context, id int64) error
	}
)
