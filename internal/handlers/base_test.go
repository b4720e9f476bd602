package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"boxlounge/internal/services"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: title is required", services.ErrValidation), http.StatusBadRequest},
		{services.ErrTargetNotFound, http.StatusNotFound},
		{services.ErrAmbiguousTarget, http.StatusBadRequest},
		{services.ErrInvalidParent, http.StatusBadRequest},
		{services.ErrVoteConflict, http.StatusConflict},
		{services.ErrUnavailable, http.StatusBadGateway},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestVoteFragment(t *testing.T) {
	out := services.VoteOutcome{Kind: services.VoteCreated, Sign: 1, Upvotes: 3, Downvotes: 1}
	frag := voteFragment(services.PostTarget(7), out)

	if !strings.Contains(frag, `hx-post="/vote/post/7"`) {
		t.Fatalf("up action missing: %s", frag)
	}
	if !strings.Contains(frag, `hx-post="/vote/post/7/down"`) {
		t.Fatalf("down action missing: %s", frag)
	}
	if !strings.Contains(frag, "▲ 3") || !strings.Contains(frag, "▼ 1") {
		t.Fatalf("authoritative counts missing: %s", frag)
	}
	if !strings.Contains(frag, `vote-up active`) {
		t.Fatalf("upvote not marked active: %s", frag)
	}
	if strings.Contains(frag, `vote-down active`) {
		t.Fatalf("downvote wrongly active: %s", frag)
	}

	// Removed vote marks neither button.
	frag = voteFragment(services.CommentTarget(9), services.VoteOutcome{Kind: services.VoteRemoved})
	if strings.Contains(frag, "active") {
		t.Fatalf("removed vote still active: %s", frag)
	}
	if !strings.Contains(frag, `hx-post="/vote/comment/9"`) {
		t.Fatalf("comment action missing: %s", frag)
	}
}

func TestToggleFragment(t *testing.T) {
	frag := toggleFragment("watchlist", 42, `Dune "Part Two"`, "/p.jpg", true)
	if !strings.Contains(frag, `hx-post="/watchlist/42"`) {
		t.Fatalf("action missing: %s", frag)
	}
	if !strings.Contains(frag, "✓ Watchlisted") {
		t.Fatalf("active label missing: %s", frag)
	}
	if strings.Contains(frag, `Dune "Part`) {
		t.Fatalf("title not escaped: %s", frag)
	}
	if !strings.Contains(frag, "&#34;Part") && !strings.Contains(frag, "&quot;Part") {
		t.Fatalf("escaped title missing: %s", frag)
	}

	frag = toggleFragment("watched", 42, "Dune", "/p.jpg", false)
	if !strings.Contains(frag, `hx-post="/watched/42"`) || !strings.Contains(frag, "Mark watched") {
		t.Fatalf("watched off state wrong: %s", frag)
	}
}
