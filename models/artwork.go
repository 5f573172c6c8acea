package models

import "time"

// 列宽，写入前按字符截断
const (
	StyleMaxLen     = 32
	IPMaxLen        = 64
	UserAgentMaxLen = 512
)

// Artwork 一幅生成（或演示占位）作品
type Artwork struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	ImageURL  string    `gorm:"column:image_url;type:text;not null" json:"image_url"`
	Style     string    `gorm:"size:32;index;default:digital" json:"style"`
	UserIP    string    `gorm:"column:user_ip;size:64" json:"user_ip"`
	UserAgent string    `gorm:"column:user_agent;size:512" json:"user_agent"`
	Likes     int       `gorm:"not null;default:0;index" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Artwork) TableName() string { return "artworks" }
