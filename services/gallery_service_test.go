package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryService_LikeFlow(t *testing.T) {
	store := newTestStore(t)
	events := &recordingPublisher{}
	svc := NewGalleryService(store, nil, nil, events, nil, nil)
	ctx := context.Background()
	a := createN(t, store, 2, "digital")

	// 预热统计缓存，点赞后应失效
	before, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, before.TotalLikes)

	res, err := svc.Like(ctx, a[1].ID, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Likes)
	assert.False(t, res.AlreadyVoted)

	res, err = svc.Like(ctx, a[1].ID, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, res.AlreadyVoted)
	assert.Equal(t, 1, res.Likes)

	after, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, after.TotalLikes)

	top, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a[1].ID, top[0].ID)
	assert.EqualValues(t, 1, top[0].Score)
	assert.Equal(t, 1, top[0].Rank)

	assert.Equal(t, []string{EventArtworkLiked}, events.types())
}

func TestGalleryService_Delete(t *testing.T) {
	store := newTestStore(t)
	events := &recordingPublisher{}
	svc := NewGalleryService(store, nil, nil, events, nil, nil)
	ctx := context.Background()
	a := createN(t, store, 1, "digital")[0]

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalArtworks)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrArtworkNotFound)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalArtworks)
	assert.Equal(t, []string{EventArtworkDeleted}, events.types())
}

func TestStatsCache_ServesCachedValue(t *testing.T) {
	store := newTestStore(t)
	cache := NewStatsCache(store, 0)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	createN(t, store, 2, "digital")

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	cache.Invalidate()
	fresh, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.TotalArtworks)
}
