package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, 16, catalog.Len())
	assert.Equal(t, "dashboard", catalog.Keys()[0])
	assert.Equal(t, "billing_admin", catalog.Keys()[catalog.Len()-1])

	for _, m := range catalog.Modules() {
		assert.NotEmpty(t, m.Key)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Icon)
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	assert.True(t, catalog.Has("clients"))
	assert.False(t, catalog.Has("not_a_module"))

	m, ok := catalog.Get("fuze_ai")
	require.True(t, ok)
	assert.Equal(t, "Fuze AI Assistant", m.Name)
	assert.Equal(t, "fa-robot", m.Icon)

	_, ok = catalog.Get("not_a_module")
	assert.False(t, ok)
}

func TestCatalogKeysMatchModules(t *testing.T) {
	catalog := DefaultCatalog()

	keys := catalog.Keys()
	require.Len(t, keys, len(catalog.Modules()))
	for i, m := range catalog.Modules() {
		assert.Equal(t, m.Key, keys[i])
	}
}
