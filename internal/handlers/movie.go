package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/models"
	"boxlounge/internal/services"
	"boxlounge/internal/utils"

	"github.com/gin-gonic/gin"
)

type MovieHandler struct {
	tmdb       *services.TMDBService
	discussion *services.DiscussionService
}

func NewMovieHandler() *MovieHandler {
	return &MovieHandler{
		tmdb:       services.GetTMDBService(),
		discussion: services.NewDiscussionService(db.DB),
	}
}

// Movies renders popular movies, optionally filtered by ?genre=<id>.
func (h *MovieHandler) Movies(c *gin.Context) {
	genreID := utils.StringToInt(c.Query("genre"))

	var media []services.Media
	var err error
	if genreID != 0 {
		media, err = h.tmdb.MoviesByGenre(genreID)
	} else {
		media, err = h.tmdb.PopularMovies()
	}
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	genres, err := h.tmdb.Genres()
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	Render(c, http.StatusOK, "movie/list.html", gin.H{
		"Title":       "Movies",
		"Media":       media,
		"Genres":      genres,
		"ActiveGenre": genreID,
		"Active":      "movies",
		"Watchlist":   h.watchlistIDs(c),
		"Ratings":     h.communityRatings(media),
	})
}

func (h *MovieHandler) Series(c *gin.Context) {
	media, err := h.tmdb.PopularTVShows()
	if err != nil {
		RenderServiceError(c, err)
		return
	}
	Render(c, http.StatusOK, "movie/list.html", gin.H{
		"Title":     "Series",
		"Media":     media,
		"Active":    "series",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(media),
	})
}

func (h *MovieHandler) Anime(c *gin.Context) {
	media, err := h.tmdb.Anime()
	if err != nil {
		RenderServiceError(c, err)
		return
	}
	Render(c, http.StatusOK, "movie/list.html", gin.H{
		"Title":     "Anime",
		"Media":     media,
		"Active":    "anime",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(media),
	})
}

func (h *MovieHandler) Trending(c *gin.Context) {
	media, err := h.tmdb.Trending()
	if err != nil {
		RenderServiceError(c, err)
		return
	}
	Render(c, http.StatusOK, "movie/list.html", gin.H{
		"Title":     "Trending this week",
		"Media":     media,
		"Active":    "trending",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(media),
	})
}

func (h *MovieHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	var media []services.Media
	if query != "" {
		var err error
		media, err = h.tmdb.Search(query)
		if err != nil {
			RenderServiceError(c, err)
			return
		}
	}

	Render(c, http.StatusOK, "search.html", gin.H{
		"Title":     "Search",
		"Query":     query,
		"Media":     media,
		"Active":    "search",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(media),
	})
}

// MovieDetail renders one movie with credits and its lounge posts.
func (h *MovieHandler) MovieDetail(c *gin.Context) {
	h.detail(c, "movie")
}

func (h *MovieHandler) TVDetail(c *gin.Context) {
	h.detail(c, "tv")
}

func (h *MovieHandler) detail(c *gin.Context, mediaType string) {
	id := utils.StringToInt(c.Param("id"))
	if id == 0 {
		RenderError(c, http.StatusNotFound, "That title does not exist.")
		return
	}

	var detail *services.MediaDetail
	var err error
	if mediaType == "movie" {
		detail, err = h.tmdb.MovieDetail(id)
	} else {
		detail, err = h.tmdb.TVDetail(id)
	}
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	posts, err := h.discussion.Feed(services.FeedQuery{
		MovieID: id,
		Sort:    services.FeedSortNew,
		Limit:   10,
	})
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	inWatchlist := false
	watched := false
	if user := middleware.CurrentUser(c); user != nil {
		var item models.WatchlistItem
		inWatchlist = db.DB.Where("user_id = ? AND movie_id = ?", user.ID, id).First(&item).Error == nil
		var seen models.WatchedItem
		watched = db.DB.Where("user_id = ? AND movie_id = ?", user.ID, id).First(&seen).Error == nil
	}

	ratings, err := h.discussion.AverageRatings([]int{id})
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	Render(c, http.StatusOK, "movie/detail.html", gin.H{
		"Title":           detail.DisplayTitle(),
		"Detail":          detail,
		"Posts":           posts,
		"InWatchlist":     inWatchlist,
		"Watched":         watched,
		"CommunityRating": ratings[id],
	})
}

// TopLists renders the curated charts: TMDB's top-rated movies and
// series plus the best releases of the last two full years.
func (h *MovieHandler) TopLists(c *gin.Context) {
	movies, err := h.tmdb.TopRatedMovies()
	if err != nil {
		RenderServiceError(c, err)
		return
	}
	shows, err := h.tmdb.TopRatedTVShows()
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	lastYear := time.Now().Year() - 1
	bestLastYear, err := h.tmdb.BestOfYear(lastYear)
	if err != nil {
		RenderServiceError(c, err)
		return
	}
	bestBefore, err := h.tmdb.BestOfYear(lastYear - 1)
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	sections := []gin.H{
		{"Heading": "Top rated movies", "Media": movies},
		{"Heading": "Top rated series", "Media": shows},
		{"Heading": fmt.Sprintf("Best of %d", lastYear), "Media": bestLastYear},
		{"Heading": fmt.Sprintf("Best of %d", lastYear-1), "Media": bestBefore},
	}

	var all []services.Media
	for _, section := range sections {
		all = append(all, section["Media"].([]services.Media)...)
	}

	Render(c, http.StatusOK, "movie/toplists.html", gin.H{
		"Title":     "Top lists",
		"Sections":  sections,
		"Active":    "toplists",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(all),
	})
}

// Person renders an actor or crew member with their best-known credits.
func (h *MovieHandler) Person(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))
	if id == 0 {
		RenderError(c, http.StatusNotFound, "That person does not exist.")
		return
	}

	person, err := h.tmdb.PersonDetail(id)
	if err != nil {
		RenderServiceError(c, err)
		return
	}

	Render(c, http.StatusOK, "person/detail.html", gin.H{
		"Title":     person.Name,
		"Person":    person,
		"Active":    "",
		"Watchlist": h.watchlistIDs(c),
		"Ratings":   h.communityRatings(person.KnownFor),
	})
}

// communityRatings loads the lounge's average ratings for a page of
// TMDB titles. Rating lookups decorate the page, so a storage error
// here degrades to no badges rather than failing the request.
func (h *MovieHandler) communityRatings(media []services.Media) map[int]services.RatingSummary {
	ids := make([]int, 0, len(media))
	for _, m := range media {
		ids = append(ids, m.ID)
	}
	ratings, err := h.discussion.AverageRatings(ids)
	if err != nil {
		return map[int]services.RatingSummary{}
	}
	return ratings
}

// watchlistIDs returns the current user's watchlisted TMDB ids so list
// pages can mark the quick-add buttons, empty for guests.
func (h *MovieHandler) watchlistIDs(c *gin.Context) map[int]bool {
	ids := make(map[int]bool)
	user := middleware.CurrentUser(c)
	if user == nil {
		return ids
	}

	var items []models.WatchlistItem
	db.DB.Where("user_id = ?", user.ID).Find(&items)
	for _, item := range items {
		ids[item.MovieID] = true
	}
	return ids
}
