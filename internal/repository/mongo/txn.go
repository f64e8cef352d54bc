package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"minami/training-system/internal/repository"
)

// txnManager implements repository.TransactionManager on top of MongoDB
// sessions. Callbacks receive a session-bound context, so any repository
// call made with it joins the transaction.
type txnManager struct {
	client *mongo.Client
}

// NewTransactionManager creates a TransactionManager backed by the given
// client. Transactions require a replica set or mongos deployment.
func NewTransactionManager(client *mongo.Client) repository.TransactionManager {
	return &txnManager{client: client}
}

func (m *txnManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
