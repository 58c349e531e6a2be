package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "tool": {"type": "string"},
    "watch": {
      "type": "object",
      "properties": {"debounce_ms": {"type": "integer", "minimum": 0}}
    }
  }
}`

func TestValidator(t *testing.T) {
	v, err := NewValidator("test.json", []byte(testSchema))
	require.NoError(t, err)

	t.Run("valid map", func(t *testing.T) {
		doc := map[string]interface{}{
			"tool":  "pyinstaller",
			"watch": map[string]interface{}{"debounce_ms": 250},
		}
		assert.NoError(t, v.Validate(doc))
	})

	t.Run("extra keys allowed", func(t *testing.T) {
		doc := map[string]interface{}{"logging": map[string]interface{}{"level": "debug"}}
		assert.NoError(t, v.Validate(doc))
	})

	t.Run("wrong type", func(t *testing.T) {
		err := v.Validate(map[string]interface{}{"tool": 42})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "/tool"), err.Error())
	})

	t.Run("nested minimum", func(t *testing.T) {
		doc := map[string]interface{}{"watch": map[string]interface{}{"debounce_ms": -1}}
		err := v.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/watch/debounce_ms")
	})
}

func TestNewValidatorRejectsBadSchema(t *testing.T) {
	_, err := NewValidator("bad.json", []byte(`{"type": `))
	assert.Error(t, err)
}
