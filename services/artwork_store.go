package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"firehorse/models"

	"gorm.io/gorm"
)

const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortRandom  = "random"

	StyleAll = "all"

	DefaultPageSize    = 12
	MaxPageSize        = 100
	DefaultSearchLimit = 20
	MinSearchLength    = 2
)

// NewArtwork 创建作品所需字段
type NewArtwork struct {
	Prompt    string
	ImageURL  string
	Style     string
	UserIP    string
	UserAgent string
}

// ListQuery 画廊分页查询
type ListQuery struct {
	Page     int
	PageSize int
	Sort     string
	Style    string
}

// Normalize 填默认值并收敛到合法范围
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	switch q.Sort {
	case SortNewest, SortPopular, SortRandom:
	default:
		q.Sort = SortNewest
	}
	return q
}

// Stats 统计
type Stats struct {
	TotalArtworks int64   `json:"totalArtworks"`
	TotalLikes    int64   `json:"totalLikes"`
	TodayArtworks int64   `json:"todayArtworks"`
	AverageLikes  float64 `json:"averageLikes"`
}

// LikeResult 点赞结果；AlreadyVoted 不是错误
type LikeResult struct {
	Likes        int
	AlreadyVoted bool
}

// ArtworkStore 作品与投票的持久化
type ArtworkStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewArtworkStore(db *gorm.DB) *ArtworkStore {
	return &ArtworkStore{db: db, now: time.Now}
}

// Migrate 建表
func (s *ArtworkStore) Migrate() error {
	return s.db.AutoMigrate(&models.Artwork{}, &models.Vote{})
}

func (s *ArtworkStore) Create(ctx context.Context, in NewArtwork) (*models.Artwork, error) {
	artwork := models.Artwork{
		Prompt:    in.Prompt,
		ImageURL:  in.ImageURL,
		Style:     clip(NormalizeStyle(in.Style), models.StyleMaxLen),
		UserIP:    clip(in.UserIP, models.IPMaxLen),
		UserAgent: clip(in.UserAgent, models.UserAgentMaxLen),
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&artwork).Error; err != nil {
		return nil, fmt.Errorf("create artwork: %w", err)
	}
	return &artwork, nil
}

func (s *ArtworkStore) List(ctx context.Context, q ListQuery) ([]models.Artwork, int64, error) {
	q = q.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Artwork{})
	if q.Style != "" && q.Style != StyleAll {
		query = query.Where("style = ?", q.Style)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count artworks: %w", err)
	}

	artworks := make([]models.Artwork, 0, q.PageSize)
	offset := (q.Page - 1) * q.PageSize
	if int64(offset) >= total {
		return artworks, total, nil
	}
	err := query.Order(s.orderBy(q.Sort)).Limit(q.PageSize).Offset(offset).Find(&artworks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list artworks: %w", err)
	}
	return artworks, total, nil
}

func (s *ArtworkStore) orderBy(sort string) string {
	switch sort {
	case SortPopular:
		return "likes DESC, id DESC"
	case SortRandom:
		if s.db.Dialector.Name() == "mysql" {
			return "RAND()"
		}
		return "RANDOM()"
	default:
		return "created_at DESC, id DESC"
	}
}

func (s *ArtworkStore) Get(ctx context.Context, id uint) (*models.Artwork, error) {
	var artwork models.Artwork
	err := s.db.WithContext(ctx).First(&artwork, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArtworkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artwork %d: %w", id, err)
	}
	return &artwork, nil
}

// Delete 删除作品并级联删除其投票，同一事务
func (s *ArtworkStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete votes of artwork %d: %w", id, err)
		}
		res := tx.Delete(&models.Artwork{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete artwork %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrArtworkNotFound
		}
		return nil
	})
}

// Search 不区分大小写的子串匹配，最新的在前
func (s *ArtworkStore) Search(ctx context.Context, q string, limit int) ([]models.Artwork, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return nil, newValidationError("q", fmt.Sprintf("Search query must be at least %d characters", MinSearchLength))
	}
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	artworks := make([]models.Artwork, 0)
	err := s.db.WithContext(ctx).
		Where(s.likeClause("LOWER(prompt)"), "%"+escapeLike(strings.ToLower(q))+"%").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&artworks).Error
	if err != nil {
		return nil, fmt.Errorf("search artworks: %w", err)
	}
	return artworks, nil
}

// likeClause MySQL 默认就用反斜杠转义，且字符串里的 '\' 会吞掉引号
func (s *ArtworkStore) likeClause(column string) string {
	if s.db.Dialector.Name() == "mysql" {
		return column + " LIKE ?"
	}
	return column + ` LIKE ? ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// Stats 今日按 UTC 自然日计算
func (s *ArtworkStore) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	var stats Stats

	if err := db.Model(&models.Artwork{}).Count(&stats.TotalArtworks).Error; err != nil {
		return stats, fmt.Errorf("count artworks: %w", err)
	}
	if err := db.Model(&models.Artwork{}).Select("COALESCE(SUM(likes), 0)").Scan(&stats.TotalLikes).Error; err != nil {
		return stats, fmt.Errorf("sum likes: %w", err)
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	err := db.Model(&models.Artwork{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayStart.Add(24*time.Hour)).
		Count(&stats.TodayArtworks).Error
	if err != nil {
		return stats, fmt.Errorf("count today artworks: %w", err)
	}

	if stats.TotalArtworks > 0 {
		stats.AverageLikes = math.Round(float64(stats.TotalLikes)/float64(stats.TotalArtworks)*10) / 10
	}
	return stats, nil
}

// Like 投票和计数在同一事务里，计数始终等于投票行数
func (s *ArtworkStore) Like(ctx context.Context, artworkID uint, voterIP string) (LikeResult, error) {
	voterIP = clip(voterIP, models.IPMaxLen)
	var result LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artwork models.Artwork
		if err := tx.Select("id", "likes").First(&artwork, artworkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArtworkNotFound
			}
			return fmt.Errorf("load artwork %d: %w", artworkID, err)
		}

		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("artwork_id = ? AND voter_ip = ?", artworkID, voterIP).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check vote: %w", err)
		}
		if existing > 0 {
			result = LikeResult{Likes: artwork.Likes, AlreadyVoted: true}
			return nil
		}

		vote := models.Vote{ArtworkID: artworkID, VoterIP: voterIP, CreatedAt: s.now().UTC()}
		if err := tx.Create(&vote).Error; err != nil {
			// 并发下唯一索引兜底；对方已提交，重新读一次点赞数
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.AlreadyVoted = true
				return readLikes(tx, artworkID, &result.Likes)
			}
			return fmt.Errorf("insert vote: %w", err)
		}
		if err := tx.Model(&models.Artwork{}).Where("id = ?", artworkID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
			return fmt.Errorf("increment likes: %w", err)
		}
		return readLikes(tx, artworkID, &result.Likes)
	})
	if err != nil {
		return LikeResult{}, err
	}
	return result, nil
}

func readLikes(tx *gorm.DB, artworkID uint, likes *int) error {
	if err := tx.Model(&models.Artwork{}).Select("likes").Where("id = ?", artworkID).Scan(likes).Error; err != nil {
		return fmt.Errorf("read likes: %w", err)
	}
	return nil
}

// clip 按字符截断到列宽
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
