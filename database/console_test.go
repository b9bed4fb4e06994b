package database

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestFlattenValue(t *testing.T) {
	t.Run("node becomes property map with identity", func(t *testing.T) {
		node := neo4j.Node{
			ElementId: "4:abc:17",
			Labels:    []string{"Artist"},
			Props:     map[string]any{"name": "Caravaggio"},
		}

		flat, ok := flattenValue(node).(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "Caravaggio", flat["name"])
		assert.Equal(t, "4:abc:17", flat["_id"])
		assert.Equal(t, []string{"Artist"}, flat["_labels"])
	})

	t.Run("relationship becomes property map with type", func(t *testing.T) {
		rel := neo4j.Relationship{
			ElementId: "5:abc:3",
			Type:      "CREATED",
			Props:     map[string]any{},
		}

		flat, ok := flattenValue(rel).(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "5:abc:3", flat["_id"])
		assert.Equal(t, "CREATED", flat["_type"])
	})

	t.Run("containers flatten recursively", func(t *testing.T) {
		node := neo4j.Node{ElementId: "4:abc:1", Props: map[string]any{"name": "Giotto"}}
		value := []any{node, map[string]any{"inner": node}}

		flat, ok := flattenValue(value).([]any)
		assert.True(t, ok)
		assert.Len(t, flat, 2)

		first, ok := flat[0].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "Giotto", first["name"])

		second, ok := flat[1].(map[string]any)
		assert.True(t, ok)
		inner, ok := second["inner"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "4:abc:1", inner["_id"])
	})

	t.Run("scalars pass through", func(t *testing.T) {
		assert.Equal(t, int64(7), flattenValue(int64(7)))
		assert.Equal(t, "plain", flattenValue("plain"))
		assert.Nil(t, flattenValue(nil))
	})
}
