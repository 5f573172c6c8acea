package services

import (
	"context"
	"strings"
	"time"

	"firehorse/metrics"
	"firehorse/models"
	"firehorse/providers"

	"go.uber.org/zap"
)

const (
	SourceFallback   = "fallback_demo"
	FallbackSuffix   = " (demo mode)"
	messageGenerated = "Fire Horse created with AI!"
	messageFallback  = "Image created (using demo - API unavailable)"
)

// GenerateInput 一次生成请求
type GenerateInput struct {
	Prompt    string
	Style     string
	Size      string
	UserIP    string
	UserAgent string
}

// GenerateResult 生成结果；Source 是成功的 provider 名或 fallback_demo
type GenerateResult struct {
	Artwork        *models.Artwork
	Source         string
	EnhancedPrompt string
	Message        string
}

// GenerationService 生成编排：增强提示词 -> 依次尝试 provider -> 失败则占位图 -> 入库。
// provider 的失败只记日志，不返回给调用方；只有校验和存储错误会返回。
type GenerationService struct {
	store    *ArtworkStore
	chain    *providers.Chain
	fallback *FallbackSelector
	events   EventPublisher
	stats    *StatsCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// GenerationDeps events/stats/metrics/logger 均可为空
type GenerationDeps struct {
	Store    *ArtworkStore
	Chain    *providers.Chain
	Fallback *FallbackSelector
	Events   EventPublisher
	Stats    *StatsCache
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

func NewGenerationService(deps GenerationDeps) *GenerationService {
	s := &GenerationService{
		store:    deps.Store,
		chain:    deps.Chain,
		fallback: deps.Fallback,
		events:   deps.Events,
		stats:    deps.Stats,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	if s.chain == nil {
		s.chain = providers.NewChain()
	}
	if s.fallback == nil {
		s.fallback = NewFallbackSelector()
	}
	if s.events == nil {
		s.events = NoopPublisher{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.chain.OnAttempt(s.recordAttempt)
	return s
}

func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if err := ValidatePrompt(in.Prompt); err != nil {
		return nil, err
	}
	rawStyle := strings.ToLower(strings.TrimSpace(in.Style))
	style := NormalizeStyle(in.Style)
	size := NormalizeSize(in.Size)
	enhanced := EnhancePrompt(in.Prompt, style, size)

	s.logger.Info("generating artwork",
		zap.String("prompt", truncate(in.Prompt, 50)),
		zap.String("style", style),
		zap.String("size", size),
		zap.Int("providers", s.chain.Len()))

	result := &GenerateResult{EnhancedPrompt: enhanced}
	record := NewArtwork{
		Prompt:    enhanced,
		Style:     style,
		UserIP:    in.UserIP,
		UserAgent: in.UserAgent,
	}

	img, provider, err := s.chain.Generate(ctx, providers.Request{Prompt: enhanced, Style: style, Size: size})
	if err == nil {
		record.ImageURL = img.Ref()
		result.Source = provider
		result.Message = messageGenerated
	} else {
		s.logger.Warn("all providers failed, using fallback image", zap.Error(err))
		record.Prompt = strings.TrimSpace(in.Prompt) + FallbackSuffix
		record.ImageURL = s.fallback.Select(rawStyle, size)
		result.Source = SourceFallback
		result.Message = messageFallback
	}
	s.metrics.RecordGeneration(result.Source)

	// 请求被取消也要把已经拿到的结果存下来
	artwork, err := s.store.Create(context.WithoutCancel(ctx), record)
	if err != nil {
		return nil, err
	}
	result.Artwork = artwork

	if s.stats != nil {
		s.stats.Invalidate()
	}
	if err := s.events.Publish(ctx, Event{Type: EventArtworkCreated, ArtworkID: artwork.ID, Source: result.Source}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", EventArtworkCreated), zap.Error(err))
	}
	return result, nil
}

func (s *GenerationService) recordAttempt(provider string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = providers.KindOf(err).String()
		s.logger.Warn("provider attempt failed",
			zap.String("provider", provider),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		s.logger.Info("provider attempt succeeded", zap.String("provider", provider), zap.Duration("elapsed", elapsed))
	}
	s.metrics.RecordAttempt(provider, outcome, elapsed)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
