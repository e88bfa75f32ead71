package leave

import (
	"context"

	"leaveflow/internal/domain/auth"
)

// DecideFunc runs inside the store's transaction with the locked record. ctx
// carries that transaction.
type DecideFunc func(ctx context.Context, app Application) (Transition, error)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Application, error)
	Create(ctx context.Context, app Application) (Application, error)
	Transition(ctx context.Context, id string, decide DecideFunc) (Application, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	ListBalances(ctx context.Context, year int) ([]Balance, error)
	UpsertBalance(ctx context.Context, balance Balance) (Balance, error)
}

// Directory resolves people and their current roles. Implementations must
// read through the transaction carried by ctx when there is one.
type Directory interface {
	Member(ctx context.Context, userID string) (auth.Member, error)
	Members(ctx context.Context) ([]auth.Member, error)
	RoleBinding(ctx context.Context, userID string) (auth.RoleBinding, error)
}
