package services

import (
	"context"
	"strconv"

	"github.com/go-redis/redis"
)

const rankKey = "rank:artwork:likes"

// RankEntry 排行榜条目
type RankEntry struct {
	ID     uint   `json:"id"`
	Score  int64  `json:"score"`
	Rank   int    `json:"rank"`
	Prompt string `json:"prompt,omitempty"`
}

// RankingService 点赞排行榜：Redis ZSET 镜像数据库里的点赞数，未配置 Redis 时直接查库
type RankingService struct {
	redis *redis.Client
	store *ArtworkStore
}

// NewRankingService client 可以为 nil
func NewRankingService(client *redis.Client, store *ArtworkStore) *RankingService {
	return &RankingService{redis: client, store: store}
}

// Record 写入最新点赞数（取数据库值而不是 ZINCRBY，重复调用也不会漂移）
func (s *RankingService) Record(artworkID uint, likes int) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.ZAdd(rankKey, redis.Z{Score: float64(likes), Member: strconv.FormatUint(uint64(artworkID), 10)}).Err()
}

func (s *RankingService) Remove(artworkID uint) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.ZRem(rankKey, strconv.FormatUint(uint64(artworkID), 10)).Err()
}

// Top 返回前 n 名
func (s *RankingService) Top(ctx context.Context, n int) ([]RankEntry, error) {
	if n <= 0 {
		n = 10
	}
	if s.redis == nil {
		return s.topFromStore(ctx, n)
	}

	zres, err := s.redis.ZRevRangeWithScores(rankKey, 0, int64(n-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	list := make([]RankEntry, 0, len(zres))
	for idx, z := range zres {
		memberStr, _ := z.Member.(string)
		id, err := strconv.ParseUint(memberStr, 10, 64)
		if err != nil {
			continue
		}
		entry := RankEntry{ID: uint(id), Score: int64(z.Score), Rank: idx + 1}
		// 尝试补上提示词（容错）
		if art, err := s.store.Get(ctx, uint(id)); err == nil {
			entry.Prompt = art.Prompt
		}
		list = append(list, entry)
	}
	return list, nil
}

func (s *RankingService) topFromStore(ctx context.Context, n int) ([]RankEntry, error) {
	artworks, _, err := s.store.List(ctx, ListQuery{Page: 1, PageSize: n, Sort: SortPopular})
	if err != nil {
		return nil, err
	}
	list := make([]RankEntry, 0, len(artworks))
	for idx, art := range artworks {
		list = append(list, RankEntry{ID: art.ID, Score: int64(art.Likes), Rank: idx + 1, Prompt: art.Prompt})
	}
	return list, nil
}
