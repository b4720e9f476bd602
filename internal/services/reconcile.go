package services

import (
	"log"

	"boxlounge/internal/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CounterReconciler recounts every denormalized vote counter from the
// ledger on a schedule. The request path already keeps counters and
// ledger in step inside one transaction, so this only exists to repair
// drift from operator surgery or partially restored backups.
type CounterReconciler struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewCounterReconciler(db *gorm.DB) *CounterReconciler {
	return &CounterReconciler{db: db, cron: cron.New()}
}

// Start schedules the nightly run at 03:00 server time.
func (r *CounterReconciler) Start() error {
	if _, err := r.cron.AddFunc("0 3 * * *", func() {
		if err := r.Run(); err != nil {
			log.Printf("counter reconcile failed: %v", err)
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *CounterReconciler) Stop() {
	r.cron.Stop()
}

// Run walks all posts and comments in batches and refreshes their
// counters. Each refresh is a full recount, so re-running is harmless.
func (r *CounterReconciler) Run() error {
	var postsDone, commentsDone int

	var posts []models.Post
	if err := r.db.Select("id").FindInBatches(&posts, 200, func(_ *gorm.DB, _ int) error {
		for i := range posts {
			if _, _, err := refreshCounters(r.db, PostTarget(posts[i].ID)); err != nil {
				return err
			}
			postsDone++
		}
		return nil
	}).Error; err != nil {
		return err
	}

	var comments []models.Comment
	if err := r.db.Select("id").FindInBatches(&comments, 200, func(_ *gorm.DB, _ int) error {
		for i := range comments {
			if _, _, err := refreshCounters(r.db, CommentTarget(comments[i].ID)); err != nil {
				return err
			}
			commentsDone++
		}
		return nil
	}).Error; err != nil {
		return err
	}

	log.Printf("counter reconcile done: %d posts, %d comments", postsDone, commentsDone)
	return nil
}
