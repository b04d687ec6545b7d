package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateStorage(t *testing.T) {
	assert.True(t, EvaluateStorage(900, 100, 1000).Allowed)
	assert.False(t, EvaluateStorage(900, 100.5, 1000).Allowed)
	assert.True(t, EvaluateStorage(0, 0, 0).Allowed)

	check := EvaluateStorage(10, 5, 20)
	assert.Equal(t, float64(10), check.CurrentMB)
	assert.Equal(t, 20, check.LimitMB)
}

func TestEvaluateMembers(t *testing.T) {
	assert.True(t, EvaluateMembers(2, 3).Allowed)
	assert.False(t, EvaluateMembers(3, 3).Allowed)
	assert.False(t, EvaluateMembers(4, 3).Allowed)
}
