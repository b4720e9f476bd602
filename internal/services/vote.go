package services

import (
	"errors"
	"fmt"

	"boxlounge/internal/models"

	"gorm.io/gorm"
)

// VoteTarget names exactly one post or one comment. The zero value is
// deliberately invalid so an underspecified target can never reach the
// ledger; construct one with PostTarget or CommentTarget.
type VoteTarget struct {
	kind voteTargetKind
	id   uint
}

type voteTargetKind int

const (
	targetNone voteTargetKind = iota
	targetPost
	targetComment
)

func PostTarget(id uint) VoteTarget {
	return VoteTarget{kind: targetPost, id: id}
}

func CommentTarget(id uint) VoteTarget {
	return VoteTarget{kind: targetComment, id: id}
}

func (t VoteTarget) IsPost() bool {
	return t.kind == targetPost
}

func (t VoteTarget) ID() uint {
	return t.id
}

func (t VoteTarget) String() string {
	switch t.kind {
	case targetPost:
		return fmt.Sprintf("post/%d", t.id)
	case targetComment:
		return fmt.Sprintf("comment/%d", t.id)
	}
	return "none"
}

type VoteOutcomeKind int

const (
	VoteCreated VoteOutcomeKind = iota + 1
	VoteChanged
	VoteRemoved
)

// VoteOutcome reports what the toggle did plus the authoritative
// counters after the recount, so callers never trust an optimistic
// client-side delta.
type VoteOutcome struct {
	Kind      VoteOutcomeKind
	Sign      int // sign now in effect, 0 after VoteRemoved
	Upvotes   int
	Downvotes int
}

// Vote applies the toggle rule for (voter, target): first vote creates
// the row, a repeat of the same sign removes it, the opposite sign
// flips it in place. The ledger write and the counter recount share one
// transaction; a duplicate-key error from the unique ledger index means
// a concurrent request from the same voter won the race, and the toggle
// is retried once before the conflict is surfaced.
func (s *DiscussionService) Vote(voterID uint, target VoteTarget, sign int) (VoteOutcome, error) {
	if voterID == 0 {
		return VoteOutcome{}, ErrUnauthorized
	}
	if sign != 1 && sign != -1 {
		return VoteOutcome{}, fmt.Errorf("%w: vote sign must be +1 or -1", ErrValidation)
	}
	if target.kind == targetNone || target.id == 0 {
		return VoteOutcome{}, ErrAmbiguousTarget
	}

	out, err := s.castVote(voterID, target, sign)
	if errors.Is(err, ErrVoteConflict) {
		out, err = s.castVote(voterID, target, sign)
	}
	return out, err
}

// targetExists verifies the voted entity inside the ledger transaction,
// so a target deleted concurrently can never gain an orphan vote row.
func targetExists(tx *gorm.DB, target VoteTarget) error {
	var count int64
	q := tx.Model(&models.Post{})
	if !target.IsPost() {
		q = tx.Model(&models.Comment{})
	}
	if err := q.Where("id = ?", target.ID()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (s *DiscussionService) castVote(voterID uint, target VoteTarget, sign int) (VoteOutcome, error) {
	var out VoteOutcome
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, target); err != nil {
			return err
		}

		q := tx.Where("user_id = ?", voterID)
		if target.IsPost() {
			q = q.Where("post_id = ?", target.ID())
		} else {
			q = q.Where("comment_id = ?", target.ID())
		}

		var existing models.Vote
		err := q.First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: voterID, Value: sign}
			id := target.ID()
			if target.IsPost() {
				vote.PostID = &id
			} else {
				vote.CommentID = &id
			}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrVoteConflict
				}
				return err
			}
			out = VoteOutcome{Kind: VoteCreated, Sign: sign}
		case err != nil:
			return err
		case existing.Value == sign:
			// Toggle off
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			out = VoteOutcome{Kind: VoteRemoved}
		default:
			if err := tx.Model(&existing).UpdateColumn("value", sign).Error; err != nil {
				return err
			}
			out = VoteOutcome{Kind: VoteChanged, Sign: sign}
		}

		up, down, err := refreshCounters(tx, target)
		if err != nil {
			return err
		}
		out.Upvotes = up
		out.Downvotes = down
		return nil
	})
	if err != nil {
		return VoteOutcome{}, wrapStorage(err)
	}
	return out, nil
}

// refreshCounters recomputes the denormalized up/down counters for the
// target from the vote ledger and persists them. A full recount rather
// than an increment, so it is idempotent and insensitive to the order
// concurrent votes from different users land in.
func refreshCounters(tx *gorm.DB, target VoteTarget) (int, int, error) {
	column := "post_id"
	if !target.IsPost() {
		column = "comment_id"
	}

	var up, down int64
	if err := tx.Model(&models.Vote{}).
		Where(column+" = ? AND value = 1", target.ID()).
		Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&models.Vote{}).
		Where(column+" = ? AND value = -1", target.ID()).
		Count(&down).Error; err != nil {
		return 0, 0, err
	}

	counters := map[string]interface{}{"upvotes": up, "downvotes": down}
	q := tx.Model(&models.Post{})
	if !target.IsPost() {
		q = tx.Model(&models.Comment{})
	}
	if err := q.Where("id = ?", target.ID()).UpdateColumns(counters).Error; err != nil {
		return 0, 0, err
	}
	return int(up), int(down), nil
}
