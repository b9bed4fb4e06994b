package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/aurumgallery/artgraph/helper"
)

// Database wraps the Neo4j driver and holds the session defaults shared by
// all handlers. The driver pools connections; sessions are scoped to one
// operation and must be closed on every exit path.
type Database struct {
	Driver  neo4j.DriverWithContext
	Name    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewDatabase connects to the graph store and verifies connectivity.
func NewDatabase(cfg *helper.Config, logger *slog.Logger) (*Database, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.Neo4jMaxPool
			c.SocketConnectTimeout = cfg.Neo4jTimeout
		},
	)
	if err != nil {
		return nil, helper.NewError("create neo4j driver", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Neo4jTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, helper.NewError("verify neo4j connectivity", err)
	}

	logger.Info("Connected to graph store", slog.String("uri", cfg.Neo4jURI))

	return &Database{
		Driver:  driver,
		Name:    cfg.Neo4jDatabase,
		Timeout: cfg.Neo4jTimeout,
		Logger:  logger,
	}, nil
}

// ReadSession opens a read-mode session. Callers must Close it.
func (d *Database) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return d.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: d.Name,
	})
}

// WriteSession opens a write-mode session. Callers must Close it.
func (d *Database) WriteSession(ctx context.Context) neo4j.SessionWithContext {
	return d.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: d.Name,
	})
}

// Close shuts down the driver and its connection pool.
func (d *Database) Close(ctx context.Context) error {
	if d == nil || d.Driver == nil {
		return nil
	}
	return d.Driver.Close(ctx)
}

// asString unwraps a driver value into a plain string. Store-boxed integers
// and floats are rendered decimally so internal code never sees driver
// types. Nil becomes the empty string.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asInt64 unwraps a driver value into an int64, tolerating numeric strings.
func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// asFloat64 unwraps a driver value into a float64.
func asFloat64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	}
	return 0
}

// nodeProp reads one property of a node as a plain string.
func nodeProp(node neo4j.Node, key string) string {
	return asString(node.Props[key])
}

// vectorParam converts an embedding into the list type the driver expects.
func vectorParam(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}
