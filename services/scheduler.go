// services/scheduler.go
package services

import (
	"log"
	"time"

	"stacksquest-api/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *QuestService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: activate quests whose scheduled publish time has passed
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var quests []models.Quest
			now := time.Now()
			err := s.DB.Where("is_active = ? AND publish_at <= ?", false, now).
				Find(&quests).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, q := range quests {
				q.IsActive = true
				q.PublishAt = nil
				if err := s.DB.Save(&q).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish quest %s: %v", q.ID, err)
				} else {
					log.Printf("✅ Auto-published quest: %s", q.Title)
				}
			}
		}),
	)
}
