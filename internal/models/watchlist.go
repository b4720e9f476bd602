package models

import (
	"time"
)

// WatchlistItem marks a TMDB title the user wants to watch.
type WatchlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_watchlist_user_movie" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	MovieID    int       `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"movie_id"`
	MovieTitle string    `gorm:"not null" json:"movie_title"`
	PosterPath string    `json:"poster_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// WatchedItem marks a TMDB title the user has already seen.
type WatchedItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_watched_user_movie" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	MovieID    int       `gorm:"not null;uniqueIndex:idx_watched_user_movie" json:"movie_id"`
	MovieTitle string    `gorm:"not null" json:"movie_title"`
	PosterPath string    `json:"poster_path"`
	CreatedAt  time.Time `json:"created_at"`
}
