// Package store persists status checks and the agent run audit trail.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/google/uuid"
)

// DefaultListLimit bounds list queries when the caller passes no limit.
const DefaultListLimit = 1000

// ErrInvalidInput is returned for records that fail basic validation.
var ErrInvalidInput = errors.New("invalid input")

// StatusCheck records that a client checked in.
type StatusCheck struct {
	ID         string    `json:"id" bson:"_id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// AgentRun is one dispatched agent operation.
type AgentRun struct {
	ID         string    `json:"id" bson:"_id"`
	Operation  string    `json:"operation" bson:"operation"`
	Variant    string    `json:"variant" bson:"variant"`
	Success    bool      `json:"success" bson:"success"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	DurationMs int64     `json:"duration_ms" bson:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store is the persistence surface used by the gateway and CLI.
type Store interface {
	CreateStatusCheck(ctx context.Context, clientName string) (*StatusCheck, error)
	// ListStatusChecks returns checks oldest first. limit <= 0 means DefaultListLimit.
	ListStatusChecks(ctx context.Context, limit int) ([]StatusCheck, error)

	RecordRun(ctx context.Context, run AgentRun) (*AgentRun, error)
	// ListRuns returns runs newest first. limit <= 0 means DefaultListLimit.
	ListRuns(ctx context.Context, limit int) ([]AgentRun, error)

	Close() error
}

// New opens the backend selected by cfg.Driver. An empty sqlite path
// falls back to defaultPath.
func New(ctx context.Context, cfg config.StoreConfig, defaultPath string, log *logging.Logger) (Store, error) {
	switch cfg.Driver {
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURL, cfg.DBName, log)
	case "memory":
		return NewMemory(), nil
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = defaultPath
		}
		return Open(path, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// newStatusCheck stamps a check for clientName. An empty name is a valid
// client name.
func newStatusCheck(clientName string) *StatusCheck {
	return &StatusCheck{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
}

func prepareRun(run AgentRun) (*AgentRun, error) {
	if run.Operation == "" {
		return nil, fmt.Errorf("%w: operation is required", ErrInvalidInput)
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
