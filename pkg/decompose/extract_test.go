package decompose_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/agentwizard/pkg/decompose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("fenced with prose", func(t *testing.T) {
		obj := `{"goals": [{"description": "a"}]}`
		got := decompose.ExtractJSON("Here is the result:\n```json\n" + obj + "\n```\nThanks")
		assert.Equal(t, obj, got)

		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(got), &v))
	})

	t.Run("already an object", func(t *testing.T) {
		in := "  {\"a\": 1}\n"
		assert.Equal(t, in, decompose.ExtractJSON(in))
	})

	t.Run("nested braces span first to last", func(t *testing.T) {
		assert.Equal(t, `{"a": {"b": 1}}`, decompose.ExtractJSON(`x {"a": {"b": 1}} y`))
	})

	t.Run("no braces", func(t *testing.T) {
		assert.Equal(t, "nothing here", decompose.ExtractJSON("nothing here"))
	})

	t.Run("closing before opening", func(t *testing.T) {
		assert.Equal(t, "} oops {", decompose.ExtractJSON("} oops {"))
	})
}
