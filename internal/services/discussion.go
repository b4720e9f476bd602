package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"boxlounge/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscussionService owns the lounge: posts, threaded comments and the
// vote ledger. Identity arrives as a user id resolved by the session
// middleware; storage is the injected gorm handle.
type DiscussionService struct {
	db *gorm.DB
}

func NewDiscussionService(db *gorm.DB) *DiscussionService {
	return &DiscussionService{db: db}
}

// MovieRef is the denormalized TMDB attachment stored on a post.
type MovieRef struct {
	ID         int
	Title      string
	PosterPath string
}

type PostInput struct {
	Title   string
	Content string
	Rating  int // 0 means no rating
	Movie   *MovieRef
}

func (s *DiscussionService) CreatePost(userID uint, in PostInput) (*models.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if in.Rating < 0 || in.Rating > 10 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 10", ErrValidation)
	}

	post := models.Post{
		Pid:     uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Content: content,
		Rating:  in.Rating,
	}
	if in.Movie != nil {
		movieID := in.Movie.ID
		post.MovieID = &movieID
		post.MovieTitle = in.Movie.Title
		post.PosterPath = in.Movie.PosterPath
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return &post, nil
}

// AddComment creates a top-level comment (parentID nil) or a reply. A
// reply's parent must exist and belong to the same post.
func (s *DiscussionService) AddComment(userID, postID uint, body string, parentID *uint) (*models.Comment, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, wrapStorage(err)
	}

	if parentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, wrapStorage(err)
		}
		if parent.PostID != postID {
			return nil, ErrInvalidParent
		}
	}

	comment := models.Comment{
		Cid:      uuid.NewString(),
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, wrapStorage(err)
	}

	s.notifyComment(&post, &comment)
	return &comment, nil
}

// notifyComment tells the post author about a new comment, or the
// parent comment's author about a reply. Never notifies the actor about
// their own comment, and failure to record a notification never fails
// the comment itself.
func (s *DiscussionService) notifyComment(post *models.Post, comment *models.Comment) {
	recipient := post.UserID
	kind := models.NotificationTypeCommentPost
	if comment.ParentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *comment.ParentID).Error; err != nil {
			return
		}
		recipient = parent.UserID
		kind = models.NotificationTypeReplyComment
	}
	if recipient == comment.UserID {
		return
	}

	actorID := comment.UserID
	notification := models.Notification{
		UserID:    recipient,
		ActorID:   &actorID,
		Type:      kind,
		PostPid:   post.Pid,
		PostTitle: post.Title,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("notification create failed: %v", err)
	}
}

// PostView is a post plus its assembled comment forest, ready for
// display.
type PostView struct {
	Post     models.Post
	Comments []*CommentNode
}

// GetPost loads a post by public id with its comment tree. When
// viewerID is non-zero the viewer's own vote signs are attached to the
// post and every node; no other user's votes are ever loaded.
func (s *DiscussionService) GetPost(pid string, viewerID uint) (*PostView, error) {
	var post models.Post
	if err := s.db.Preload("User").Where("pid = ?", pid).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, wrapStorage(err)
	}

	var comments []models.Comment
	if err := s.db.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, wrapStorage(err)
	}

	view := &PostView{Post: post, Comments: BuildCommentTree(comments)}
	if viewerID != 0 {
		if err := s.attachViewerVotes(view, viewerID); err != nil {
			return nil, wrapStorage(err)
		}
	}
	return view, nil
}

func (s *DiscussionService) attachViewerVotes(view *PostView, viewerID uint) error {
	commentIDs := make([]uint, 0, 16)
	WalkCommentNodes(view.Comments, func(n *CommentNode) {
		commentIDs = append(commentIDs, n.Comment.ID)
	})

	q := s.db.Where("user_id = ?", viewerID)
	if len(commentIDs) > 0 {
		q = q.Where("post_id = ? OR comment_id IN ?", view.Post.ID, commentIDs)
	} else {
		q = q.Where("post_id = ?", view.Post.ID)
	}

	var votes []models.Vote
	if err := q.Find(&votes).Error; err != nil {
		return err
	}

	byComment := make(map[uint]int, len(votes))
	for _, v := range votes {
		switch {
		case v.PostID != nil:
			view.Post.ViewerVote = v.Value
		case v.CommentID != nil:
			byComment[*v.CommentID] = v.Value
		}
	}
	WalkCommentNodes(view.Comments, func(n *CommentNode) {
		n.ViewerVote = byComment[n.Comment.ID]
	})
	return nil
}

// feedCandidateLimit bounds the in-memory ranking set. The feed ranks
// the most recent candidates in Go rather than pushing the score math
// into SQL.
const feedCandidateLimit = 200

type FeedQuery struct {
	MovieID int // 0 means no movie filter
	Sort    FeedSort
	Limit   int
}

// Feed returns the ranked lounge feed, optionally scoped to one TMDB
// title.
func (s *DiscussionService) Feed(q FeedQuery) ([]models.Post, error) {
	limit := q.Limit
	if limit <= 0 || limit > feedCandidateLimit {
		limit = 30
	}

	dbq := s.db.Preload("User").Order("created_at DESC").Limit(feedCandidateLimit)
	if q.MovieID != 0 {
		dbq = dbq.Where("movie_id = ?", q.MovieID)
	}

	var posts []models.Post
	if err := dbq.Find(&posts).Error; err != nil {
		return nil, wrapStorage(err)
	}

	ranked := RankPosts(posts, q.Sort)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if err := s.fillCommentCounts(ranked); err != nil {
		return nil, wrapStorage(err)
	}
	return ranked, nil
}

// RatingSummary aggregates the community's 1-10 review ratings for one
// title.
type RatingSummary struct {
	Average float64
	Count   int
}

// AverageRatings returns the community rating per TMDB id for every
// given title that has at least one rated review. Unrated posts
// (rating 0) never count.
func (s *DiscussionService) AverageRatings(movieIDs []int) (map[int]RatingSummary, error) {
	summaries := make(map[int]RatingSummary, len(movieIDs))
	if len(movieIDs) == 0 {
		return summaries, nil
	}

	type ratingRow struct {
		MovieID int
		Average float64
		Count   int
	}
	var rows []ratingRow
	if err := s.db.Model(&models.Post{}).
		Select("movie_id, AVG(rating) as average, COUNT(*) as count").
		Where("movie_id IN ? AND rating > 0", movieIDs).
		Group("movie_id").
		Scan(&rows).Error; err != nil {
		return nil, wrapStorage(err)
	}

	for _, r := range rows {
		summaries[r.MovieID] = RatingSummary{Average: r.Average, Count: r.Count}
	}
	return summaries, nil
}

// fillCommentCounts batch-fills CommentCount for a page of posts with
// one grouped query.
func (s *DiscussionService) fillCommentCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countRow struct {
		PostID uint
		Count  int
	}
	var rows []countRow
	if err := s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}
