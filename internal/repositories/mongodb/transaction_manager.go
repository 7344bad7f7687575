package mongodb

import (
	"context"
	"time"

	"unipool/internal/repositories/interfaces"
	"unipool/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type transactionManager struct {
	client  *mongo.Client
	timeout time.Duration
}

func NewTransactionManager(client *mongo.Client, timeout time.Duration) interfaces.TransactionManager {
	return &transactionManager{
		client:  client,
		timeout: timeout,
	}
}

// WithTransaction hands fn the session context, so repositories called with
// it join the transaction without knowing about sessions.
func (m *transactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := database.WithTransaction(ctx, m.client, m.timeout, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
