package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGetRemove(t *testing.T) {
	a := NewArena[string](2)

	h1 := a.Insert("a")
	h2 := a.Insert("b")
	assert.NotZero(t, h1)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, uint32(1), h1.Generation())
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = a.Remove(h1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	_, ok = a.Get(h1)
	assert.False(t, ok)

	_, ok = a.Remove(h1)
	assert.False(t, ok, "second remove with the same handle is stale")
	assert.Equal(t, 1, a.Len())
}

func TestArenaReusesSlotWithNewGeneration(t *testing.T) {
	a := NewArena[int](0)
	h1 := a.Insert(1)
	a.Remove(h1)

	h2 := a.Insert(2)
	assert.Equal(t, h1.Index(), h2.Index())
	assert.Equal(t, h1.Generation()+1, h2.Generation())

	_, ok := a.Get(h1)
	assert.False(t, ok)
	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestArenaZeroAndForeignHandles(t *testing.T) {
	a := NewArena[int](0)
	a.Insert(7)

	_, ok := a.Get(0)
	assert.False(t, ok)
	_, ok = a.Remove(NewHandle(40, 1))
	assert.False(t, ok)
	assert.Equal(t, 1, a.Len())
}
