package ledger

import (
	"context"

	"github.com/erp/stocksync/internal/domain/ledger"
)

// TransactionScope runs ledger writes atomically. Sequence increments made
// inside a rolled-back scope are rolled back with it.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to one transaction.
type TransactionalRepositories interface {
	Documents() ledger.DocumentRepository
	Sequences() ledger.SequenceAllocator
}
