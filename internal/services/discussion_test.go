package services

import (
	"errors"
	"testing"
	"time"

	"boxlounge/internal/models"

	"gorm.io/gorm"
)

func TestCreatePostValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")

	cases := []struct {
		name string
		uid  uint
		in   PostInput
		want error
	}{
		{"guest", 0, PostInput{Title: "t", Content: "c"}, ErrUnauthorized},
		{"no title", user.ID, PostInput{Content: "c"}, ErrValidation},
		{"blank title", user.ID, PostInput{Title: "   ", Content: "c"}, ErrValidation},
		{"no body", user.ID, PostInput{Title: "t"}, ErrValidation},
		{"rating too high", user.ID, PostInput{Title: "t", Content: "c", Rating: 11}, ErrValidation},
		{"rating negative", user.ID, PostInput{Title: "t", Content: "c", Rating: -1}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreatePost(tc.uid, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreatePostWithMovie(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")

	post, err := svc.CreatePost(user.ID, PostInput{
		Title:   "  Dune review  ",
		Content: "Sand. So much sand.",
		Rating:  8,
		Movie:   &MovieRef{ID: 438631, Title: "Dune", PosterPath: "/dune.jpg"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Pid == "" {
		t.Fatal("post has no public id")
	}
	if post.Title != "Dune review" {
		t.Fatalf("title not trimmed: %q", post.Title)
	}
	if post.MovieID == nil || *post.MovieID != 438631 {
		t.Fatalf("movie ref not stored: %v", post.MovieID)
	}
	if post.MovieTitle != "Dune" || post.PosterPath != "/dune.jpg" {
		t.Fatalf("movie denormalization lost: %q %q", post.MovieTitle, post.PosterPath)
	}
}

func TestAddCommentParentRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")
	postA := createPost(t, db, user.ID, "a")
	postB := createPost(t, db, user.ID, "b")
	parentOnB := createComment(t, db, user.ID, postB.ID, nil, "on b")

	if _, err := svc.AddComment(user.ID, 9999, "hi", nil); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing post: got %v", err)
	}

	missing := uint(9999)
	if _, err := svc.AddComment(user.ID, postA.ID, "hi", &missing); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing parent: got %v", err)
	}

	// Parent belongs to another post.
	if _, err := svc.AddComment(user.ID, postA.ID, "hi", &parentOnB.ID); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("cross-post parent: got %v", err)
	}

	if _, err := svc.AddComment(user.ID, postA.ID, "   ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank body: got %v", err)
	}

	// Valid reply on the right post.
	reply, err := svc.AddComment(user.ID, postB.ID, "agreed", &parentOnB.ID)
	if err != nil {
		t.Fatalf("valid reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parentOnB.ID {
		t.Fatalf("reply parent not stored")
	}
}

func TestAddCommentNotifies(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	author := createUser(t, db, "author")
	commenter := createUser(t, db, "commenter")
	post := createPost(t, db, author.ID, "p")

	// A stranger commenting notifies the post author.
	top, err := svc.AddComment(commenter.ID, post.ID, "nice", nil)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	var n models.Notification
	if err := db.Where("user_id = ?", author.ID).First(&n).Error; err != nil {
		t.Fatalf("author notification missing: %v", err)
	}
	if n.Type != models.NotificationTypeCommentPost || n.PostPid != post.Pid {
		t.Fatalf("got notification %+v", n)
	}

	// The author replying to that comment notifies the commenter.
	if _, err := svc.AddComment(author.ID, post.ID, "thanks", &top.ID); err != nil {
		t.Fatalf("reply: %v", err)
	}
	var reply models.Notification
	if err := db.Where("user_id = ? AND type = ?", commenter.ID, models.NotificationTypeReplyComment).
		First(&reply).Error; err != nil {
		t.Fatalf("reply notification missing: %v", err)
	}

	// Commenting on your own post stays silent.
	before := notificationCount(t, db)
	if _, err := svc.AddComment(author.ID, post.ID, "self note", nil); err != nil {
		t.Fatalf("self comment: %v", err)
	}
	if after := notificationCount(t, db); after != before {
		t.Fatalf("self comment produced a notification")
	}
}

func TestGetPostViewerVotes(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	author := createUser(t, db, "author")
	viewer := createUser(t, db, "viewer")
	other := createUser(t, db, "other")
	post := createPost(t, db, author.ID, "p")
	c1 := createComment(t, db, author.ID, post.ID, nil, "one")
	c2 := createComment(t, db, author.ID, post.ID, nil, "two")

	mustVote := func(uid uint, target VoteTarget, sign int) {
		t.Helper()
		if _, err := svc.Vote(uid, target, sign); err != nil {
			t.Fatalf("vote %s: %v", target, err)
		}
	}
	mustVote(viewer.ID, PostTarget(post.ID), 1)
	mustVote(viewer.ID, CommentTarget(c1.ID), -1)
	mustVote(other.ID, CommentTarget(c2.ID), 1)

	view, err := svc.GetPost(post.Pid, viewer.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if view.Post.ViewerVote != 1 {
		t.Fatalf("post viewer vote = %d, want 1", view.Post.ViewerVote)
	}
	votes := map[uint]int{}
	WalkCommentNodes(view.Comments, func(n *CommentNode) {
		votes[n.Comment.ID] = n.ViewerVote
	})
	// Only the viewer's own signs appear; other users' votes never leak.
	if votes[c1.ID] != -1 || votes[c2.ID] != 0 {
		t.Fatalf("got comment viewer votes %v", votes)
	}

	// Anonymous view carries no signs at all.
	anon, err := svc.GetPost(post.Pid, 0)
	if err != nil {
		t.Fatalf("anon get: %v", err)
	}
	if anon.Post.ViewerVote != 0 {
		t.Fatalf("anonymous viewer vote = %d", anon.Post.ViewerVote)
	}

	if _, err := svc.GetPost("no-such-pid", 0); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing pid: got %v", err)
	}
}

func TestFeedFilterAndCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")

	duneID := 438631
	p1, err := svc.CreatePost(user.ID, PostInput{
		Title: "dune take", Content: "c",
		Movie: &MovieRef{ID: duneID, Title: "Dune"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreatePost(user.ID, PostInput{Title: "offtopic", Content: "c"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	createComment(t, db, user.ID, p1.ID, nil, "one")
	createComment(t, db, user.ID, p1.ID, nil, "two")

	all, err := svc.Feed(FeedQuery{Sort: FeedSortNew})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d posts, want 2", len(all))
	}

	filtered, err := svc.Feed(FeedQuery{MovieID: duneID, Sort: FeedSortNew})
	if err != nil {
		t.Fatalf("filtered feed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != p1.ID {
		t.Fatalf("filter returned wrong posts")
	}
	if filtered[0].CommentCount != 2 {
		t.Fatalf("comment count = %d, want 2", filtered[0].CommentCount)
	}
}

func TestFeedRanksByScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	author := createUser(t, db, "author")

	// Older but higher-scored post must lead the hot feed.
	winner := createPost(t, db, author.ID, "winner")
	db.Model(winner).UpdateColumn("created_at", time.Now().Add(-time.Hour))
	loser := createPost(t, db, author.ID, "loser")

	for i, name := range []string{"v1", "v2", "v3"} {
		v := createUser(t, db, name)
		if _, err := svc.Vote(v.ID, PostTarget(winner.ID), 1); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	feed, err := svc.Feed(FeedQuery{Sort: FeedSortHot})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != winner.ID || feed[1].ID != loser.ID {
		t.Fatalf("got feed order %v, want winner first", postIDs(feed))
	}
}

func TestAverageRatings(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")

	duneID, barbieID := 438631, 346698
	mustPost := func(title string, movieID, rating int) {
		t.Helper()
		_, err := svc.CreatePost(user.ID, PostInput{
			Title: title, Content: "c", Rating: rating,
			Movie: &MovieRef{ID: movieID, Title: title},
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mustPost("dune high", duneID, 8)
	mustPost("dune low", duneID, 6)
	// A discussion without a rating never moves the average.
	mustPost("dune unrated", duneID, 0)
	mustPost("barbie", barbieID, 10)

	got, err := svc.AverageRatings([]int{duneID, barbieID, 550})
	if err != nil {
		t.Fatalf("average ratings: %v", err)
	}
	if s := got[duneID]; s.Average != 7 || s.Count != 2 {
		t.Fatalf("dune summary = %+v, want avg 7 count 2", s)
	}
	if s := got[barbieID]; s.Average != 10 || s.Count != 1 {
		t.Fatalf("barbie summary = %+v, want avg 10 count 1", s)
	}
	if _, ok := got[550]; ok {
		t.Fatalf("unreviewed title got a summary")
	}

	// No ids means no query and an empty map.
	empty, err := svc.AverageRatings(nil)
	if err != nil {
		t.Fatalf("empty ids: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("got %d summaries for no ids", len(empty))
	}
}

func TestStorageFailureMapsToUnavailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(db)
	user := createUser(t, db, "writer")
	post := createPost(t, db, user.ID, "p")

	// Kill the connection so every query below fails.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	if _, err := svc.Feed(FeedQuery{Sort: FeedSortNew}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("feed: got %v, want ErrUnavailable", err)
	}
	if _, err := svc.GetPost(post.Pid, 0); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("get post: got %v, want ErrUnavailable", err)
	}
	if _, err := svc.Vote(user.ID, PostTarget(post.ID), 1); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("vote: got %v, want ErrUnavailable", err)
	}
	if _, err := svc.AverageRatings([]int{1}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("average ratings: got %v, want ErrUnavailable", err)
	}
}

func notificationCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Notification{}).Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}
