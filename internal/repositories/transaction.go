package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs a unit of work atomically across documents when the store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTransactor wraps work in a MongoDB session transaction. Transactions need a
// replica set, so they can be disabled, in which case fn runs directly.
type MongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func NewMongoTransactor(client *mongo.Client, enabled bool) *MongoTransactor {
	return &MongoTransactor{client: client, enabled: enabled}
}

// WithTransaction may call fn more than once on transient errors; fn must only touch the store.
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || t.client == nil {
		return fn(ctx)
	}
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
