package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionAppender mirrors a stored transaction as one spreadsheet row.
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

// Columns is the header of a mirrored transactions sheet.
var Columns = []string{"ID", "Date", "Type", "Category", "Amount", "Notes"}

// Row renders tx in Columns order.
func Row(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.UTC().Format(core.DateLayout),
		string(tx.Kind),
		tx.Category,
		tx.Amount.String(),
		tx.Notes,
	}
}
