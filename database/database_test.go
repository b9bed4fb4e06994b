package database

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestAsString(t *testing.T) {
	t.Run("nil becomes empty string", func(t *testing.T) {
		assert.Equal(t, "", asString(nil))
	})

	t.Run("string passes through", func(t *testing.T) {
		assert.Equal(t, "Rembrandt", asString("Rembrandt"))
	})

	t.Run("store-boxed integer renders decimally", func(t *testing.T) {
		assert.Equal(t, "31953", asString(int64(31953)))
	})

	t.Run("float renders without exponent", func(t *testing.T) {
		assert.Equal(t, "0.5", asString(float64(0.5)))
	})

	t.Run("bool renders as literal", func(t *testing.T) {
		assert.Equal(t, "true", asString(true))
	})
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(42), asInt64(int64(42)))
	assert.Equal(t, int64(42), asInt64(float64(42.7)))
	assert.Equal(t, int64(42), asInt64("42"))
	assert.Equal(t, int64(0), asInt64("not a number"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestAsFloat64(t *testing.T) {
	assert.Equal(t, 0.87, asFloat64(0.87))
	assert.Equal(t, 3.0, asFloat64(int64(3)))
	assert.Equal(t, 0.0, asFloat64(nil))
	assert.Equal(t, 0.0, asFloat64("0.87"))
}

func TestNodeProp(t *testing.T) {
	node := neo4j.Node{Props: map[string]any{
		"name":            "Jan Vermeer",
		"paintings_count": int64(34),
	}}

	assert.Equal(t, "Jan Vermeer", nodeProp(node, "name"))
	assert.Equal(t, "34", nodeProp(node, "paintings_count"))
	assert.Equal(t, "", nodeProp(node, "missing"))
}

func TestVectorParam(t *testing.T) {
	t.Run("converts element-wise", func(t *testing.T) {
		out := vectorParam([]float32{0.25, -0.5, 1})
		assert.Equal(t, []float64{0.25, -0.5, 1}, out)
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		out := vectorParam(nil)
		assert.NotNil(t, out)
		assert.Len(t, out, 0)
	})
}
