package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquiz/internal/cache"
	"geoquiz/internal/model"
)

func TestModeService_CurrentDefaultsToFirst(t *testing.T) {
	svc := NewModeService(cache.NewMemoryStore())

	got, err := svc.Current(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFlag, got)
}

func TestModeService_CurrentIgnoresUnrecognizedValue(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.SetNextCategory(context.Background(), "s1", "astrology"))

	svc := NewModeService(store)
	got, err := svc.Current(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFlag, got)
}

func TestModeService_FullCycleClosure(t *testing.T) {
	svc := NewModeService(cache.NewMemoryStore())

	for _, start := range model.RotationOrder {
		current := start
		for i := 0; i < len(model.RotationOrder); i++ {
			current = svc.Next(current)
		}
		assert.Equal(t, start, current, "cycle starting at %s must close", start)
	}
}

func TestModeService_NextNeverRepeatsConsecutively(t *testing.T) {
	svc := NewModeService(cache.NewMemoryStore())

	seen := make(map[model.Category]bool)
	current := model.CategoryFlag
	for i := 0; i < len(model.RotationOrder); i++ {
		assert.False(t, seen[current])
		seen[current] = true
		next := svc.Next(current)
		assert.NotEqual(t, current, next)
		current = next
	}
	assert.Len(t, seen, len(model.RotationOrder))
}

func TestModeService_NextOnUnrecognizedValue(t *testing.T) {
	svc := NewModeService(cache.NewMemoryStore())
	assert.Equal(t, model.CategoryFlag, svc.Next(model.Category("astrology")))
}

func TestModeService_CommitRoundTrip(t *testing.T) {
	svc := NewModeService(cache.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.Commit(ctx, "s1", model.CategoryCurrency))

	got, err := svc.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCurrency, got)

	// Sessions do not share rotation state.
	other, err := svc.Current(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFlag, other)
}
