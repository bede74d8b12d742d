package store

import (
	"context"
	"fmt"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	statusChecksCollection = "status_checks"
	agentRunsCollection    = "agent_runs"

	mongoConnectTimeout = 10 * time.Second
)

// MongoStore is the MongoDB Store. Status checks live in the status_checks
// collection and runs in agent_runs.
type MongoStore struct {
	client *mongo.Client
	checks *mongo.Collection
	runs   *mongo.Collection
	log    *logging.Logger
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, dbName string, log *logging.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo url is required")
	}
	if dbName == "" {
		dbName = "wallcraft"
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client: client,
		checks: db.Collection(statusChecksCollection),
		runs:   db.Collection(agentRunsCollection),
		log:    log.Sub("store.mongo"),
	}
	s.log.Info().Str("db", dbName).Msg("mongo connected")
	return s, nil
}

func (s *MongoStore) CreateStatusCheck(ctx context.Context, clientName string) (*StatusCheck, error) {
	sc := newStatusCheck(clientName)
	if _, err := s.checks.InsertOne(ctx, sc); err != nil {
		return nil, fmt.Errorf("inserting status check: %w", err)
	}
	return sc, nil
}

func (s *MongoStore) ListStatusChecks(ctx context.Context, limit int) ([]StatusCheck, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(listLimit(limit)))

	cursor, err := s.checks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	checks := []StatusCheck{}
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

func (s *MongoStore) RecordRun(ctx context.Context, run AgentRun) (*AgentRun, error) {
	r, err := prepareRun(run)
	if err != nil {
		return nil, err
	}
	if _, err := s.runs.InsertOne(ctx, r); err != nil {
		return nil, fmt.Errorf("inserting agent run: %w", err)
	}
	return r, nil
}

func (s *MongoStore) ListRuns(ctx context.Context, limit int) ([]AgentRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(listLimit(limit)))

	cursor, err := s.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := []AgentRun{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// Close disconnects from the server.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info().Msg("closing mongo connection")
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
