package interfaces

import "context"

// TransactionManager runs fn atomically. The ctx passed to fn carries the
// transaction and must be used for every repository call inside it. fn may
// be invoked more than once when the store retries a transient conflict.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
