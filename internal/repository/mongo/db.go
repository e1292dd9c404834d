package mongo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connection can succeed while the server is unresponsive, so ping the primary.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged, not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log logrus.FieldLogger) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:         EnsureUserIndexes,
		packageCollectionName:      EnsurePackageIndexes,
		subscriptionCollectionName: EnsureSubscriptionIndexes,
		sessionCollectionName:      EnsureSessionIndexes,
		historyCollectionName:      EnsureHistoryIndexes,
		reviewCollectionName:       EnsureReviewIndexes,
		templateCollectionName:     EnsureTemplateIndexes,
		scheduleCollectionName:     EnsureScheduleIndexes,
		mealCollectionName:         EnsureMealIndexes,
		mealPlanCollectionName:     EnsureMealPlanIndexes,
		visitCollectionName:        EnsureVisitIndexes,
		uploadCollectionName:       EnsureUploadIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			log.WithError(err).WithField("collection", name).Warn("failed to create indexes")
		}
	}
}
