package handlers

import (
	"fmt"
	"net/http"
	"time"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/models"
	"boxlounge/internal/services"
	"boxlounge/internal/utils"

	"github.com/gin-gonic/gin"
)

type LoungeHandler struct {
	discussion *services.DiscussionService
}

func NewLoungeHandler() *LoungeHandler {
	return &LoungeHandler{
		discussion: services.NewDiscussionService(db.DB),
	}
}

// Feed renders the lounge feed: hot by default, ?sort=new|top, and
// optionally scoped to one TMDB title with ?movie=<id>.
func (h *LoungeHandler) Feed(c *gin.Context) {
	sort := services.ParseFeedSort(c.Query("sort"))
	movieID := utils.StringToInt(c.Query("movie"))

	// Only the ranked post list is cached; the render data is rebuilt
	// per request because Render injects the current user into it.
	cacheKey := fmt.Sprintf("lounge:feed:%s", sort)
	cacheable := movieID == 0

	var posts []models.Post
	if cacheable {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if p, ok := cached.([]models.Post); ok {
				posts = p
			}
		}
	}
	if posts == nil {
		var err error
		posts, err = h.discussion.Feed(services.FeedQuery{
			MovieID: movieID,
			Sort:    sort,
			Limit:   30,
		})
		if err != nil {
			RenderServiceError(c, err)
			return
		}
		if cacheable {
			utils.GetCache().Set(cacheKey, posts, time.Minute)
		}
	}

	Render(c, http.StatusOK, "lounge/list.html", gin.H{
		"Title":   "Lounge",
		"Posts":   posts,
		"Sort":    string(sort),
		"MovieID": movieID,
		"Active":  "lounge",
	})
}

// Detail renders one post with its comment tree. The viewer's own vote
// signs are attached when logged in.
func (h *LoungeHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	view, err := h.discussion.GetPost(pid, viewerID)
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	services.WalkCommentNodes(view.Comments, func(n *services.CommentNode) {
		n.ContentHTML = utils.RenderMarkdown(n.Content)
	})

	Render(c, http.StatusOK, "lounge/detail.html", gin.H{
		"Title":       view.Post.Title,
		"Post":        view.Post,
		"PostContent": utils.RenderMarkdown(view.Post.Content),
		"Comments":    view.Comments,
		"Active":      "lounge",
	})
}

func (h *LoungeHandler) ShowCreate(c *gin.Context) {
	// A "write a review" link from a catalog page pre-fills the movie
	// reference; a plain /submit starts a free-form post.
	Render(c, http.StatusOK, "lounge/create.html", gin.H{
		"Title":      "New post",
		"MovieID":    c.Query("movie_id"),
		"MovieTitle": c.Query("movie_title"),
		"PosterPath": c.Query("poster_path"),
	})
}

func (h *LoungeHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	input := services.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Rating:  utils.StringToInt(c.PostForm("rating")),
	}
	if movieID := utils.StringToInt(c.PostForm("movie_id")); movieID != 0 {
		input.Movie = &services.MovieRef{
			ID:         movieID,
			Title:      c.PostForm("movie_title"),
			PosterPath: c.PostForm("poster_path"),
		}
	}

	post, err := h.discussion.CreatePost(user.ID, input)
	if err != nil {
		code, message := statusForError(err)
		Render(c, code, "lounge/create.html", gin.H{
			"Title":      "New post",
			"Error":      message,
			"FormTitle":  input.Title,
			"Content":    input.Content,
			"MovieID":    c.PostForm("movie_id"),
			"MovieTitle": c.PostForm("movie_title"),
			"PosterPath": c.PostForm("poster_path"),
		})
		return
	}

	invalidateFeedCache()
	c.Redirect(http.StatusFound, "/p/"+post.Pid)
}

func (h *LoungeHandler) CreateComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "That post no longer exists.")
		return
	}

	var parentID *uint
	if raw := c.PostForm("parent_id"); raw != "" {
		id := utils.StringToUint(raw)
		parentID = &id
	}

	if _, err := h.discussion.AddComment(user.ID, post.ID, c.PostForm("content"), parentID); err != nil {
		RenderServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/p/"+pid)
}

func invalidateFeedCache() {
	for _, sort := range []services.FeedSort{services.FeedSortHot, services.FeedSortNew, services.FeedSortTop} {
		utils.GetCache().Delete(fmt.Sprintf("lounge:feed:%s", sort))
	}
}
