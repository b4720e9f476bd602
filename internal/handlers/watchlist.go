package handlers

import (
	"fmt"
	"html"
	"net/http"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/models"
	"boxlounge/internal/utils"

	"github.com/gin-gonic/gin"
)

type WatchlistHandler struct{}

func NewWatchlistHandler() *WatchlistHandler {
	return &WatchlistHandler{}
}

// List renders both shelves: to watch and already watched.
func (h *WatchlistHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var watchlist []models.WatchlistItem
	db.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&watchlist)

	var watched []models.WatchedItem
	db.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&watched)

	Render(c, http.StatusOK, "watchlist/list.html", gin.H{
		"Title":     "My watchlist",
		"Watchlist": watchlist,
		"Watched":   watched,
		"Active":    "watchlist",
	})
}

// Toggle adds or removes a title from the watchlist. Adding also clears
// it from the watched shelf, mirroring the client behavior.
func (h *WatchlistHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	movieID := utils.StringToInt(c.Param("movieID"))
	if movieID == 0 {
		c.Status(http.StatusBadRequest)
		return
	}
	title := c.PostForm("movie_title")
	poster := c.PostForm("poster_path")

	var item models.WatchlistItem
	err := db.DB.Where("user_id = ? AND movie_id = ?", user.ID, movieID).First(&item).Error
	if err == nil {
		db.DB.Delete(&item)
		c.String(http.StatusOK, toggleFragment("watchlist", movieID, item.MovieTitle, item.PosterPath, false))
		return
	}

	item = models.WatchlistItem{
		UserID:     user.ID,
		MovieID:    movieID,
		MovieTitle: title,
		PosterPath: poster,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not update your watchlist")
		return
	}
	db.DB.Where("user_id = ? AND movie_id = ?", user.ID, movieID).Delete(&models.WatchedItem{})

	c.String(http.StatusOK, toggleFragment("watchlist", movieID, title, poster, true))
}

// ToggleWatched marks a title as seen or unseen. Marking it seen also
// removes it from the watchlist.
func (h *WatchlistHandler) ToggleWatched(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	movieID := utils.StringToInt(c.Param("movieID"))
	if movieID == 0 {
		c.Status(http.StatusBadRequest)
		return
	}
	title := c.PostForm("movie_title")
	poster := c.PostForm("poster_path")

	var item models.WatchedItem
	err := db.DB.Where("user_id = ? AND movie_id = ?", user.ID, movieID).First(&item).Error
	if err == nil {
		db.DB.Delete(&item)
		c.String(http.StatusOK, toggleFragment("watched", movieID, item.MovieTitle, item.PosterPath, false))
		return
	}

	item = models.WatchedItem{
		UserID:     user.ID,
		MovieID:    movieID,
		MovieTitle: title,
		PosterPath: poster,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not update your watched list")
		return
	}
	db.DB.Where("user_id = ? AND movie_id = ?", user.ID, movieID).Delete(&models.WatchlistItem{})

	c.String(http.StatusOK, toggleFragment("watched", movieID, title, poster, true))
}

// toggleFragment is the HTMX swap target for a shelf button. It keeps
// the movie metadata in hidden fields so the next toggle still has it.
func toggleFragment(shelf string, movieID int, title, poster string, on bool) string {
	label := "+ Watchlist"
	if shelf == "watched" {
		label = "Mark watched"
	}
	class := ""
	if on {
		class = " active"
		if shelf == "watched" {
			label = "✓ Watched"
		} else {
			label = "✓ Watchlisted"
		}
	}
	return fmt.Sprintf(`<form hx-post="/%s/%d" hx-swap="outerHTML">
<input type="hidden" name="movie_title" value="%s">
<input type="hidden" name="poster_path" value="%s">
<button class="%s-btn%s" type="submit">%s</button>
</form>`,
		shelf, movieID, html.EscapeString(title), html.EscapeString(poster), shelf, class, label)
}
