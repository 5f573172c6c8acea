package models

import "time"

// Vote 点赞记录，(artwork_id, voter_ip) 唯一，保证每个 IP 对同一作品只投一次
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArtworkID uint      `gorm:"not null;uniqueIndex:idx_vote_artwork_voter,priority:1" json:"artwork_id"`
	VoterIP   string    `gorm:"column:voter_ip;size:64;not null;uniqueIndex:idx_vote_artwork_voter,priority:2" json:"voter_ip"`
	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string { return "votes" }
