package handlers

import (
	"fmt"
	"net/http"

	"boxlounge/internal/db"
	"boxlounge/internal/middleware"
	"boxlounge/internal/services"
	"boxlounge/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	discussion *services.DiscussionService
}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{
		discussion: services.NewDiscussionService(db.DB),
	}
}

// Upvote handles POST /vote/:type/:id
func (h *VoteHandler) Upvote(c *gin.Context) {
	h.vote(c, 1)
}

// Downvote handles POST /vote/:type/:id/down
func (h *VoteHandler) Downvote(c *gin.Context) {
	h.vote(c, -1)
}

func (h *VoteHandler) vote(c *gin.Context, sign int) {
	user := middleware.CurrentUser(c)
	if user == nil {
		// HTMX callers navigate to the login page instead of seeing a
		// bare 401.
		HtmxRedirect(c, "/login")
		return
	}

	var target services.VoteTarget
	id := utils.StringToUint(c.Param("id"))
	switch c.Param("type") {
	case "post":
		target = services.PostTarget(id)
	case "comment":
		target = services.CommentTarget(id)
	default:
		c.Status(http.StatusBadRequest)
		return
	}

	out, err := h.discussion.Vote(user.ID, target, sign)
	if err != nil {
		code, message := statusForError(err)
		c.String(code, message)
		return
	}

	invalidateFeedCache()
	c.String(http.StatusOK, voteFragment(target, out))
}

// voteFragment is the HTMX swap target for one vote control: both
// authoritative counters plus the caller's own state. The client always
// replaces its optimistic counts with these.
func voteFragment(target services.VoteTarget, out services.VoteOutcome) string {
	kind := "comment"
	if target.IsPost() {
		kind = "post"
	}
	upClass := ""
	downClass := ""
	switch out.Sign {
	case 1:
		upClass = " active"
	case -1:
		downClass = " active"
	}
	return fmt.Sprintf(`<button class="vote-up%s" hx-post="/vote/%s/%d" hx-target="closest .vote-box">▲ %d</button>
<button class="vote-down%s" hx-post="/vote/%s/%d/down" hx-target="closest .vote-box">▼ %d</button>`,
		upClass, kind, target.ID(), out.Upvotes,
		downClass, kind, target.ID(), out.Downvotes)
}
