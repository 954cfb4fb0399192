package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/pkg/logger"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	RegisterAllTools(registry, NewService(&fakeProvider{}, &fakeSearcher{}, nil, logger.Nop()))

	t.Run("List", func(t *testing.T) {
		assert.Equal(t, []string{
			DetailedInfo, ETFInfo, StockHistory, StockNews, StockProfile, TechnicalSummary, SearchWeb,
		}, registry.List())
	})

	t.Run("Get", func(t *testing.T) {
		tool, ok := registry.Get(StockNews)
		require.True(t, ok)
		assert.Equal(t, StockNews, tool.Name())
		assert.Equal(t, "symbol", tool.Definition().Params[0].Name)

		_, ok = registry.Get("unknown_tool")
		assert.False(t, ok)
	})

	t.Run("Map", func(t *testing.T) {
		r := NewRegistry()
		r.Register(New(Definition{Name: "echo"}, func(context.Context, map[string]any) (string, error) {
			return "inner", nil
		}))
		r.Map(func(inner Tool) Tool {
			return New(inner.Definition(), func(ctx context.Context, args map[string]any) (string, error) {
				out, err := inner.Execute(ctx, args)
				return "wrapped " + out, err
			})
		})

		tool, ok := r.Get("echo")
		require.True(t, ok)
		out, err := tool.Execute(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "wrapped inner", out)
	})
}

func TestCatalogDefinitions(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 7)

	seen := map[string]bool{}
	for _, def := range defs {
		assert.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true
		assert.NotEmpty(t, def.Description)
	}

	def, ok := Lookup(SearchWeb)
	require.True(t, ok)
	assert.Equal(t, TypeInt, def.Params[1].Type)
	assert.Equal(t, 5, def.Params[1].Default)

	defs[0].Name = "mutated"
	again, _ := Lookup(StockHistory)
	assert.Equal(t, StockHistory, again.Name, "Definitions returns a copy")
}
