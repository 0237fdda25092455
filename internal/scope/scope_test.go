package scope

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/binder/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Scope
	}{
		{"", Singleton},
		{"singleton", Singleton},
		{"PROTOTYPE", Prototype},
		{"transient", Prototype},
		{"application", Application},
		{" session ", Session},
		{"request", Request},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("galaxy")
	assert.Error(t, err)
}

func TestScopeText(t *testing.T) {
	var s Scope
	require.NoError(t, s.UnmarshalText([]byte("request")))
	assert.Equal(t, Request, s)

	b, err := Session.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "session", string(b))
	assert.Equal(t, "scope(42)", Scope(42).String())

	assert.True(t, Singleton.Cached())
	assert.True(t, Application.Cached())
	assert.False(t, Prototype.Cached())
	assert.True(t, Session.External())
	assert.False(t, Singleton.External())
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	_, ok := IDFrom(ctx, Session)
	assert.False(t, ok)

	ctx, sid := BeginSession(ctx)
	ctx, rid := BeginRequest(ctx)
	assert.NotEqual(t, sid, rid)

	got, ok := IDFrom(ctx, Session)
	assert.True(t, ok)
	assert.Equal(t, sid, got)

	got, ok = IDFrom(ctx, Request)
	assert.True(t, ok)
	assert.Equal(t, rid, got)
}

func TestMemoryStoreCreatesOncePerID(t *testing.T) {
	store := NewMemoryStore()
	key := types.KeyOf(types.Named("Cart"))

	var calls atomic.Int32
	create := func() (any, error) {
		n := calls.Add(1)
		return n, nil
	}

	var wg sync.WaitGroup
	results := make([]any, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.GetOrCreate(Session, "s1", key, create)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, results[0], v)
	}

	other, err := store.GetOrCreate(Session, "s2", key, create)
	require.NoError(t, err)
	assert.NotEqual(t, results[0], other)
	assert.Equal(t, 2, store.Active(Session))
}

func TestMemoryStoreFailureIsNotCached(t *testing.T) {
	store := NewMemoryStore()
	key := types.KeyOf(types.Named("Cart"))

	_, err := store.GetOrCreate(Request, "r1", key, func() (any, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	v, err := store.GetOrCreate(Request, "r1", key, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestMemoryStoreEnd(t *testing.T) {
	store := NewMemoryStore()
	a := types.KeyOf(types.Named("A"))
	b := types.KeyOf(types.Named("B"))

	_, _ = store.GetOrCreate(Request, "r1", a, func() (any, error) { return 1, nil })
	_, _ = store.GetOrCreate(Request, "r1", b, func() (any, error) { return 2, nil })

	assert.Equal(t, 2, store.End(Request, "r1"))
	assert.Equal(t, 0, store.End(Request, "r1"))
	assert.Equal(t, 0, store.Active(Request))

	v, err := store.GetOrCreate(Request, "r1", a, func() (any, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestMemoryStoreReset(t *testing.T) {
	m := NewMemoryStore()
	key := types.KeyOf(types.Named("Cart"))
	_, err := m.GetOrCreate(Session, "a", key, func() (any, error) { return 1, nil })
	require.NoError(t, err)
	_, err = m.GetOrCreate(Request, "b", key, func() (any, error) { return 2, nil })
	require.NoError(t, err)

	m.Reset()
	assert.Equal(t, 0, m.Active(Session))
	assert.Equal(t, 0, m.Active(Request))
}
