package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector(t *testing.T) {
	t.Run("DOM tier selects by volume", func(t *testing.T) {
		min, max := 0, 10
		tier := RateTier{ServiceType: ServiceTypeDOM, MinVolume: &min, MaxVolume: &max}

		sel, ok := tier.Selector().(ByVolume)
		require.True(t, ok)
		assert.Equal(t, 0, sel.Min)
		require.NotNil(t, sel.Max)
		assert.Equal(t, 10, *sel.Max)
	})

	t.Run("SDD tier selects by weight", func(t *testing.T) {
		w := decimal.NewFromInt(5)
		tier := RateTier{ServiceType: ServiceTypeSDD, MaxWeight: &w}

		sel, ok := tier.Selector().(ByWeight)
		require.True(t, ok)
		assert.True(t, sel.MaxWeight.Equal(w))
	})

	t.Run("missing bounds default safely", func(t *testing.T) {
		tier := RateTier{ServiceType: ServiceTypeDOM}
		sel, ok := tier.Selector().(ByVolume)
		require.True(t, ok)
		assert.Equal(t, 0, sel.Min)
		assert.Nil(t, sel.Max)
	})
}

func TestByVolumeContainsVolume(t *testing.T) {
	max := 10
	bounded := ByVolume{Min: 5, Max: &max}

	assert.False(t, bounded.ContainsVolume(4))
	assert.True(t, bounded.ContainsVolume(5))
	assert.True(t, bounded.ContainsVolume(10))
	assert.False(t, bounded.ContainsVolume(11))

	open := ByVolume{Min: 11}
	assert.False(t, open.ContainsVolume(10))
	assert.True(t, open.ContainsVolume(11))
	assert.True(t, open.ContainsVolume(100000))
}

func TestByWeightCoversWeight(t *testing.T) {
	sel := ByWeight{MaxWeight: decimal.RequireFromString("5")}

	assert.True(t, sel.CoversWeight(decimal.RequireFromString("4.999")))
	assert.True(t, sel.CoversWeight(decimal.RequireFromString("5")))
	assert.False(t, sel.CoversWeight(decimal.RequireFromString("5.001")))
}
