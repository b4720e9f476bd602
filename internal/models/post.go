package models

import (
	"time"
)

// Post is a lounge entry: a review or discussion starter, optionally
// attached to a TMDB title. MovieTitle and PosterPath are denormalized
// copies taken at creation time so rendering never re-queries TMDB.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Pid        string    `gorm:"uniqueIndex;size:36;not null" json:"pid"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`
	MovieID    *int      `gorm:"index" json:"movie_id"` // TMDB id, nil for free-form posts
	MovieTitle string    `json:"movie_title"`
	PosterPath string    `json:"poster_path"`
	Rating     int       `json:"rating"` // 1-10, 0 when the author gave none
	Upvotes    int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes  int       `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Filled at query time, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
	ViewerVote   int `gorm:"-" json:"viewer_vote"` // +1/-1/0 for the requesting user
}

// Score is the net vote score used by the top/hot orderings.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}
