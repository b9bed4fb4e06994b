package database

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/aurumgallery/artgraph/helper"
)

// ConsoleDBHandlerFunctions defines the interface for the raw query console.
type ConsoleDBHandlerFunctions interface {
	RunRawQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// ConsoleDBHandler executes operator-supplied Cypher and flattens the rows
// into plain maps for display. It runs whatever it is given; callers are
// expected to be trusted operators, not end users.
type ConsoleDBHandler struct {
	db *Database
}

// NewConsoleDBHandler creates a new console handler.
func NewConsoleDBHandler(db *Database) (*ConsoleDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	db.Logger.Info("Initialized ConsoleDBHandler")

	return &ConsoleDBHandler{db: db}, nil
}

// RunRawQuery executes the query verbatim and returns one map per row.
// Store errors pass through unwrapped so the operator sees the original
// syntax or constraint message.
func (h *ConsoleDBHandler) RunRawQuery(ctx context.Context, query string) ([]map[string]any, error) {
	session := h.db.WriteSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows := []map[string]any{}
	for result.Next(ctx) {
		record := result.Record()
		row := make(map[string]any, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			row[key] = flattenValue(value)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// flattenValue converts driver graph types into display-friendly values.
// Nodes and relationships become property maps annotated with their
// identity; containers are flattened recursively.
func flattenValue(value any) any {
	switch v := value.(type) {
	case neo4j.Node:
		props := make(map[string]any, len(v.Props)+2)
		for key, prop := range v.Props {
			props[key] = flattenValue(prop)
		}
		props["_id"] = v.ElementId
		props["_labels"] = v.Labels
		return props
	case neo4j.Relationship:
		props := make(map[string]any, len(v.Props)+2)
		for key, prop := range v.Props {
			props[key] = flattenValue(prop)
		}
		props["_id"] = v.ElementId
		props["_type"] = v.Type
		return props
	case []any:
		flattened := make([]any, len(v))
		for i, item := range v {
			flattened[i] = flattenValue(item)
		}
		return flattened
	case map[string]any:
		flattened := make(map[string]any, len(v))
		for key, item := range v {
			flattened[key] = flattenValue(item)
		}
		return flattened
	default:
		return value
	}
}
