package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func TestContainer(t *testing.T) {
	c := NewContainer()
	c.Register(ServiceScript, &greeter{name: "script"})
	c.Register(ServiceExport, "not a greeter")

	t.Run("resolve typed", func(t *testing.T) {
		g, err := Resolve[*greeter](c, ServiceScript)
		require.NoError(t, err)
		assert.Equal(t, "script", g.name)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Resolve[*greeter](c, ServiceExport)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Resolve[*greeter](c, ServiceLLM)
		assert.Error(t, err)
		assert.Panics(t, func() { MustResolve[*greeter](c, ServiceLLM) })
	})

	t.Run("names sorted", func(t *testing.T) {
		assert.Equal(t, []string{ServiceExport, ServiceScript}, c.GetNames())
		c.Remove(ServiceExport)
		assert.False(t, c.Has(ServiceExport))
		c.Clear()
		assert.Empty(t, c.GetNames())
	})
}
