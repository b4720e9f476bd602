package router

import (
	"boxlounge/internal/handlers"
	"boxlounge/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every handler onto the engine.
func RegisterRoutes(r *gin.Engine) {
	lounge := handlers.NewLoungeHandler()
	movie := handlers.NewMovieHandler()
	vote := handlers.NewVoteHandler()
	auth := handlers.NewAuthHandler()
	watchlist := handlers.NewWatchlistHandler()
	user := handlers.NewUserHandler()
	notification := handlers.NewNotificationHandler()

	// Public pages
	r.GET("/", lounge.Feed)
	r.GET("/p/:pid", lounge.Detail)

	r.GET("/movies", movie.Movies)
	r.GET("/series", movie.Series)
	r.GET("/anime", movie.Anime)
	r.GET("/trending", movie.Trending)
	r.GET("/search", movie.Search)
	r.GET("/movie/:id", movie.MovieDetail)
	r.GET("/tv/:id", movie.TVDetail)
	r.GET("/top-lists", movie.TopLists)
	r.GET("/person/:id", movie.Person)

	// Vote endpoints stay outside the auth group: the handler answers
	// guests with an HX-Redirect instead of a bare 302.
	r.POST("/vote/:type/:id", vote.Upvote)
	r.POST("/vote/:type/:id/down", vote.Downvote)

	r.GET("/signup", auth.ShowRegister)
	r.POST("/signup", auth.Register)
	r.GET("/login", auth.ShowLogin)
	r.POST("/login", auth.Login)
	r.GET("/logout", auth.Logout)

	// Logged-in only
	authed := r.Group("/")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/submit", lounge.ShowCreate)
		authed.POST("/submit", lounge.Create)
		authed.POST("/p/:pid/comment", lounge.CreateComment)

		authed.GET("/watchlist", watchlist.List)
		authed.POST("/watchlist/:movieID", watchlist.Toggle)
		authed.POST("/watched/:movieID", watchlist.ToggleWatched)

		authed.GET("/profile", user.Profile)
		authed.POST("/profile", user.UpdateProfile)

		authed.GET("/notifications", notification.List)
		authed.GET("/notifications/:id/read", notification.Read)
		authed.POST("/notifications/read-all", notification.ReadAll)
	}
}
