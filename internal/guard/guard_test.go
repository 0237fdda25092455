package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/types"
)

var (
	keyA = types.KeyOf(types.Named("A"))
	keyB = types.KeyOf(types.Named("B"))
	keyC = types.KeyOf(types.Named("C"))
)

func TestEnterAndContains(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Depth())
	assert.False(t, g.Contains(keyA))

	ga, err := g.Enter(keyA)
	require.NoError(t, err)
	assert.True(t, ga.Contains(keyA))
	assert.False(t, g.Contains(keyA), "parent guard must not change")

	gab, err := ga.Enter(keyB)
	require.NoError(t, err)
	assert.Equal(t, []types.Key{keyA, keyB}, gab.Chain())
	assert.Equal(t, 2, gab.Depth())
}

func TestSiblingBranchesAreIsolated(t *testing.T) {
	root, err := New().Enter(keyA)
	require.NoError(t, err)

	left, err := root.Enter(keyB)
	require.NoError(t, err)
	right, err := root.Enter(keyC)
	require.NoError(t, err)

	assert.False(t, left.Contains(keyC))
	assert.False(t, right.Contains(keyB))

	// B may appear again on a sibling path without being a cycle.
	_, err = right.Enter(keyB)
	assert.NoError(t, err)
}

func TestCycleReportsFullChain(t *testing.T) {
	g, _ := New().Enter(keyA)
	g, _ = g.Enter(keyB)

	_, err := g.Enter(keyA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, binderrors.ErrCircularDependency))

	var cycle *binderrors.CircularDependencyError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"A", "B", "A"}, cycle.Chain)
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestNamedKeysAreDistinct(t *testing.T) {
	g, _ := New().Enter(types.NamedKey(types.Named("Logger"), "audit"))
	_, err := g.Enter(types.KeyOf(types.Named("Logger")))
	assert.NoError(t, err)
}
