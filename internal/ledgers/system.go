package ledgers

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/pagination"
)

// System defines the public contract for ledger domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Ledger], error)

	Find(ctx context.Context, id uuid.UUID) (*Ledger, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) (*Ledger, error)
	Reconcile(ctx context.Context, documentID uuid.UUID) (*Ledger, error)
	ReconcileBatch(ctx context.Context, documentIDs []uuid.UUID) *BatchResult
	Validate(entry reconcile.Entry) reconcile.Result
	Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*Ledger, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
