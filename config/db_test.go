package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"firehorse/models"
	"firehorse/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "gallery.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", sqliteDSN("gallery.db"))
	assert.Equal(t, "file:x?mode=memory&cache=shared&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate",
		sqliteDSN("file:x?mode=memory&cache=shared"))
	// 显式指定的参数保持不变
	assert.Equal(t, "g.db?_busy_timeout=100&_journal_mode=WAL&_txlock=immediate", sqliteDSN("g.db?_busy_timeout=100"))
}

// 文件库 + 连接池下并发点赞：不同 IP 全部成功，同一 IP 只记一票
func TestOpenDB_SQLiteConcurrentLikes(t *testing.T) {
	db, err := OpenDB("sqlite", filepath.Join(t.TempDir(), "gallery.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { sqlDB.Close() })

	store := services.NewArtworkStore(db)
	require.NoError(t, store.Migrate())
	ctx := context.Background()
	a, err := store.Create(ctx, services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)

	const distinct, repeated = 30, 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		errs     []error
		accepted int
	)
	like := func(ip string) {
		defer wg.Done()
		res, err := store.Like(ctx, a.ID, ip)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		if ip == "10.9.9.9" && !res.AlreadyVoted {
			accepted++
		}
	}
	for i := 0; i < distinct; i++ {
		wg.Add(1)
		go like(fmt.Sprintf("10.0.0.%d", i))
	}
	for i := 0; i < repeated; i++ {
		wg.Add(1)
		go like("10.9.9.9")
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, accepted)

	var votes int64
	require.NoError(t, db.Model(&models.Vote{}).Where("artwork_id = ?", a.ID).Count(&votes).Error)
	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, distinct+1, votes)
	assert.EqualValues(t, votes, got.Likes)
}
