package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsClosed(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 13)

	seen := map[ToolName]bool{}
	for _, tool := range catalog {
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true

		resolved, ok := KnownTool(string(tool.Name))
		assert.True(t, ok, "catalog entry %s not resolvable", tool.Name)
		assert.Equal(t, tool.Name, resolved)

		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
		assert.Equal(t, "object", tool.Parameters.Type)
		for _, req := range tool.Parameters.Required {
			_, present := tool.Parameters.Properties[req]
			assert.True(t, present, "tool %s requires undeclared property %s", tool.Name, req)
		}
	}
}

func TestKnownToolRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "delete_everything", "Search_Anime", "search_anime "} {
		_, ok := KnownTool(name)
		assert.False(t, ok, "expected %q to be rejected", name)
	}
}
