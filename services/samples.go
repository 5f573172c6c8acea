package services

import (
	"context"
	"fmt"

	"firehorse/models"
)

var sampleArtworks = []NewArtwork{
	{Prompt: "金色火龙马，身披火焰，踏云而行，加密货币符号环绕", ImageURL: styleFallbacks["digital"], Style: "digital"},
	{Prompt: "水墨风格龙马，火焰鬃毛，传统与现代艺术结合", ImageURL: styleFallbacks["chinese"], Style: "chinese"},
	{Prompt: "赛博朋克火龙，机械铠甲，霓虹城市，数字货币流动", ImageURL: styleFallbacks["cyberpunk"], Style: "cyberpunk"},
	{Prompt: "奇幻火龙神骏，魔法符文，星空背景，史诗场景", ImageURL: styleFallbacks["fantasy"], Style: "fantasy"},
	{Prompt: "火焰龙马，金色鳞甲，数字货币宇宙，未来科技感", ImageURL: "https://images.unsplash.com/photo-1519681393784-d120267933ba?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80", Style: "digital"},
	{Prompt: "国风龙马，祥云火焰，传统图案融合现代数字艺术", ImageURL: "https://images.unsplash.com/photo-1500462918059-b1a0cb512f1d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80", Style: "chinese"},
}

// Seed 空库时写入示例作品，返回写入条数。
// 点赞数从 0 开始，保持与投票行数一致。
func (s *ArtworkStore) Seed(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Artwork{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count artworks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	rows := make([]models.Artwork, 0, len(sampleArtworks))
	for _, a := range sampleArtworks {
		rows = append(rows, models.Artwork{
			Prompt:    a.Prompt,
			ImageURL:  a.ImageURL,
			Style:     a.Style,
			CreatedAt: s.now().UTC(),
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed artworks: %w", err)
	}
	return len(rows), nil
}
