package services

import (
	"context"

	"firehorse/metrics"
	"firehorse/models"

	"go.uber.org/zap"
)

// GalleryService 画廊读写；点赞/删除后同步排行榜、统计缓存并发布事件（尽力而为）
type GalleryService struct {
	store   *ArtworkStore
	ranking *RankingService
	stats   *StatsCache
	events  EventPublisher
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGalleryService(store *ArtworkStore, ranking *RankingService, stats *StatsCache, events EventPublisher, m *metrics.Metrics, logger *zap.Logger) *GalleryService {
	if ranking == nil {
		ranking = NewRankingService(nil, store)
	}
	if stats == nil {
		stats = NewStatsCache(store, 0)
	}
	if events == nil {
		events = NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{store: store, ranking: ranking, stats: stats, events: events, metrics: m, logger: logger}
}

func (s *GalleryService) List(ctx context.Context, q ListQuery) ([]models.Artwork, int64, error) {
	return s.store.List(ctx, q)
}

func (s *GalleryService) Get(ctx context.Context, id uint) (*models.Artwork, error) {
	return s.store.Get(ctx, id)
}

func (s *GalleryService) Search(ctx context.Context, q string, limit int) ([]models.Artwork, error) {
	return s.store.Search(ctx, q, limit)
}

func (s *GalleryService) Stats(ctx context.Context) (Stats, error) {
	return s.stats.Get(ctx)
}

func (s *GalleryService) Top(ctx context.Context, n int) ([]RankEntry, error) {
	return s.ranking.Top(ctx, n)
}

func (s *GalleryService) Like(ctx context.Context, artworkID uint, voterIP string) (LikeResult, error) {
	res, err := s.store.Like(ctx, artworkID, voterIP)
	if err != nil {
		return res, err
	}
	s.metrics.RecordLike(res.AlreadyVoted)
	if res.AlreadyVoted {
		return res, nil
	}

	s.stats.Invalidate()
	if err := s.ranking.Record(artworkID, res.Likes); err != nil {
		s.logger.Warn("failed to update like ranking", zap.Uint("artwork_id", artworkID), zap.Error(err))
	}
	if err := s.events.Publish(ctx, Event{Type: EventArtworkLiked, ArtworkID: artworkID, Likes: res.Likes}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", EventArtworkLiked), zap.Error(err))
	}
	return res, nil
}

func (s *GalleryService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.stats.Invalidate()
	if err := s.ranking.Remove(id); err != nil {
		s.logger.Warn("failed to remove artwork from ranking", zap.Uint("artwork_id", id), zap.Error(err))
	}
	if err := s.events.Publish(ctx, Event{Type: EventArtworkDeleted, ArtworkID: id}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", EventArtworkDeleted), zap.Error(err))
	}
	return nil
}
