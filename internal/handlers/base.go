package handlers

import (
	"errors"
	"net/http"

	"boxlounge/internal/middleware"
	"boxlounge/internal/services"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path

	// The layout compares these against strings, so they must exist.
	if _, ok := obj["Active"]; !ok {
		obj["Active"] = ""
	}
	if _, ok := obj["Query"]; !ok {
		obj["Query"] = ""
	}

	c.HTML(code, name, obj)
}

// HtmxRedirect tells an HTMX caller to navigate client side.
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// statusForError maps a service failure onto a status code and a
// user-facing message. Each kind stays distinguishable; the fallback
// covers storage or network trouble.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "You must be logged in to do that."
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrTargetNotFound):
		return http.StatusNotFound, "That content no longer exists."
	case errors.Is(err, services.ErrAmbiguousTarget):
		return http.StatusBadRequest, "Invalid vote target."
	case errors.Is(err, services.ErrInvalidParent):
		return http.StatusBadRequest, "You can only reply to a comment on the same post."
	case errors.Is(err, services.ErrVoteConflict):
		return http.StatusConflict, "Your vote collided with another request. Please try again."
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusBadGateway, "An upstream service is temporarily unavailable."
	}
	return http.StatusInternalServerError, "Something went wrong."
}

// RenderServiceError renders the error page for a service failure.
func RenderServiceError(c *gin.Context, err error) {
	code, message := statusForError(err)
	RenderError(c, code, message)
}
