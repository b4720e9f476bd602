package services

import (
	"sort"

	"boxlounge/internal/models"
)

type FeedSort string

const (
	FeedSortHot FeedSort = "hot"
	FeedSortNew FeedSort = "new"
	FeedSortTop FeedSort = "top"
)

// ParseFeedSort maps a query-string value onto a strategy, defaulting
// to hot.
func ParseFeedSort(s string) FeedSort {
	switch s {
	case "new":
		return FeedSortNew
	case "top":
		return FeedSortTop
	default:
		return FeedSortHot
	}
}

// RankPosts orders a copy of posts by the given strategy. Every
// ordering ends in an id tie-break, so the result is a deterministic
// total order regardless of input order.
//
// "hot" is intentionally the same ordering as "top": a time-decayed hot
// score is a possible extension, but the current product treats them
// identically.
func RankPosts(posts []models.Post, strategy FeedSort) []models.Post {
	ranked := make([]models.Post, len(posts))
	copy(ranked, posts)

	switch strategy {
	case FeedSortNew:
		sort.Slice(ranked, func(i, j int) bool {
			if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
				return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
			}
			return ranked[i].ID > ranked[j].ID
		})
	default: // top, hot
		sort.Slice(ranked, func(i, j int) bool {
			si, sj := ranked[i].Score(), ranked[j].Score()
			if si != sj {
				return si > sj
			}
			if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
				return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
			}
			return ranked[i].ID > ranked[j].ID
		})
	}
	return ranked
}
