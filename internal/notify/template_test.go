package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustacheEngine_Render(t *testing.T) {
	t.Run("substitutes nested variables", func(t *testing.T) {
		out, err := MustacheEngine{}.Render(
			[]byte("Job '{{job.name}}' said: {{job.message}}"),
			map[string]any{"job": map[string]string{"name": "backup", "message": "disk full"}},
		)
		require.NoError(t, err)
		assert.Equal(t, "Job 'backup' said: disk full", string(out))
	})

	t.Run("leaves missing variables empty", func(t *testing.T) {
		out, err := MustacheEngine{}.Render([]byte("hello {{nobody}}"), map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "hello ", string(out))
	})
}

func TestEngineRegistry(t *testing.T) {
	t.Run("mustache is registered by default", func(t *testing.T) {
		r := NewEngineRegistry()
		engine, ok := r.Get("mustache")
		assert.True(t, ok)
		assert.NotNil(t, engine)
	})

	t.Run("unknown keys miss", func(t *testing.T) {
		r := NewEngineRegistry()
		_, ok := r.Get("handlebars")
		assert.False(t, ok)
	})
}

func TestDefaultTemplate(t *testing.T) {
	t.Run("every event has a built-in body", func(t *testing.T) {
		for _, event := range []Event{EventError, EventNormal, EventEnable, EventDisable} {
			content := defaultTemplate(event)
			require.NotEmpty(t, content, "event %s", event)
			assert.Contains(t, string(content), "{{job.name}}")
		}
	})

	t.Run("unknown events have none", func(t *testing.T) {
		assert.Nil(t, defaultTemplate(Event("bogus")))
	})
}
