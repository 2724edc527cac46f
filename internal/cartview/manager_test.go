package cartview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetReturnsSameViewPerSession(t *testing.T) {
	sut := NewManager(DefaultPlatformFee, time.Minute, &mockCarts{}, &mockCatalog{}, nil)
	defer sut.Close()

	a := sut.Get("sess-1", "1")
	b := sut.Get("sess-1", "1")
	other := sut.Get("sess-2", "2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestManager_EvictIdleClosesView(t *testing.T) {
	sut := NewManager(DefaultPlatformFee, 10*time.Millisecond, &mockCarts{}, &mockCatalog{}, nil)
	defer sut.Close()

	v := sut.Get("sess-1", "1")
	time.Sleep(20 * time.Millisecond)
	sut.evictIdle()

	require.ErrorIs(t, v.Refresh(context.Background()), ErrViewClosed)
	assert.NotSame(t, v, sut.Get("sess-1", "1"), "a fresh view replaces the evicted one")
}

func TestManager_UserChangeReplacesView(t *testing.T) {
	sut := NewManager(DefaultPlatformFee, time.Minute, &mockCarts{}, &mockCatalog{}, nil)
	defer sut.Close()

	old := sut.Get("sess-1", "1")
	replacement := sut.Get("sess-1", "2")

	assert.NotSame(t, old, replacement)
	require.ErrorIs(t, old.Refresh(context.Background()), ErrViewClosed,
		"the previous user's view must be torn down")
	assert.NoError(t, replacement.Refresh(context.Background()))
}

func TestManager_RecentViewSurvivesEviction(t *testing.T) {
	sut := NewManager(DefaultPlatformFee, time.Minute, &mockCarts{}, &mockCatalog{}, nil)
	defer sut.Close()

	v := sut.Get("sess-1", "1")
	sut.evictIdle()

	assert.Same(t, v, sut.Get("sess-1", "1"))
}

func TestManager_CloseClosesAllViews(t *testing.T) {
	sut := NewManager(DefaultPlatformFee, time.Minute, &mockCarts{}, &mockCatalog{}, nil)
	v := sut.Get("sess-1", "1")

	require.NoError(t, sut.Close())
	require.ErrorIs(t, v.Refresh(context.Background()), ErrViewClosed)
}
