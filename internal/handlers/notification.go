package handlers

import (
	"net/http"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/models"
	"boxlounge/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List shows the newest 50 notifications, unread first.
func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var notifications []models.Notification
	db.DB.Where("user_id = ?", user.ID).
		Preload("Actor").
		Order("is_read ASC, created_at DESC").
		Limit(50).
		Find(&notifications)

	Render(c, http.StatusOK, "notification/list.html", gin.H{
		"Title":         "Notifications",
		"Notifications": notifications,
	})
}

// Read marks one notification read and jumps to its post.
func (h *NotificationHandler) Read(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	var n models.Notification
	if err := db.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&n).Error; err != nil {
		c.Redirect(http.StatusFound, "/notifications")
		return
	}

	db.DB.Model(&n).Update("is_read", true)

	if n.PostPid != "" {
		c.Redirect(http.StatusFound, "/p/"+n.PostPid)
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}

// ReadAll marks every unread notification read.
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	c.Redirect(http.StatusFound, "/notifications")
}
