package handlers

import (
	"net/http"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile shows the current user's posts and shelves.
func (h *UserHandler) Profile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var posts []models.Post
	db.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(30).Find(&posts)

	var watchlistCount, watchedCount int64
	db.DB.Model(&models.WatchlistItem{}).Where("user_id = ?", user.ID).Count(&watchlistCount)
	db.DB.Model(&models.WatchedItem{}).Where("user_id = ?", user.ID).Count(&watchedCount)

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":          user.Username,
		"Profile":        user,
		"Posts":          posts,
		"WatchlistCount": watchlistCount,
		"WatchedCount":   watchedCount,
		"Active":         "profile",
	})
}

// UpdateProfile saves the bio from the profile form.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	bio := c.PostForm("bio")
	if len(bio) > 200 {
		bio = bio[:200]
	}
	db.DB.Model(user).Update("bio", bio)

	c.Redirect(http.StatusFound, "/profile")
}
