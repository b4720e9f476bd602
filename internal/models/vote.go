package models

import (
	"time"
)

// Vote is one ledger row per (voter, target). Exactly one of PostID and
// CommentID is set. The two composite unique indexes are the backstop
// against concurrent toggles: Postgres and SQLite treat NULLs as
// distinct, so (user_id, post_id) only collides for two votes by the
// same user on the same post, and likewise for (user_id, comment_id).
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_votes_user_post;uniqueIndex:idx_votes_user_comment" json:"user_id"`
	PostID    *uint     `gorm:"index;uniqueIndex:idx_votes_user_post" json:"post_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_votes_user_comment" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}
