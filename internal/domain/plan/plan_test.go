package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		p, err := NewPlan("  Pro  ", 9900, 10, 10240)
		require.NoError(t, err)
		assert.Equal(t, "Pro", p.Name())
		assert.Equal(t, int64(9900), p.Price())
		assert.False(t, p.IsFree())
	})

	t.Run("free plan", func(t *testing.T) {
		p, err := NewPlan("Free", 0, 3, 1000)
		require.NoError(t, err)
		assert.True(t, p.IsFree())
	})

	t.Run("invalid terms", func(t *testing.T) {
		_, err := NewPlan("", 100, 1, 1)
		assert.Error(t, err)
		_, err = NewPlan("Bad", -1, 1, 1)
		assert.Error(t, err)
		_, err = NewPlan("Bad", 1, 0, 1)
		assert.Error(t, err)
	})
}
