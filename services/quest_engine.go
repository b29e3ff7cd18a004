package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"stacksquest-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseCompletionXP is granted on every quest completion, on top of any
// experience-type reward the quest itself defines.
const BaseCompletionXP = 100

// QuestEngine owns the lifecycle of a user's attempt at a quest: starting it,
// advancing through steps, detecting completion and issuing rewards exactly
// once per completion. It holds no state between calls beyond the per-key
// locks; everything durable lives in the database.
type QuestEngine struct {
	DB *gorm.DB

	// locks serializes read-modify-write per (userID, questID) pair so two
	// racing CompleteStep calls cannot both pass the stale-read checks.
	// Different pairs never contend.
	locks sync.Map // "userID:questID" → *sync.Mutex
}

func NewQuestEngine(db *gorm.DB) *QuestEngine {
	return &QuestEngine{DB: db}
}

func (e *QuestEngine) lockProgress(userID, questID string) func() {
	key := userID + ":" + questID
	v, _ := e.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// StartQuest creates a new progress record for (userID, questID).
// A repeated start is an error, not a no-op — the ALREADY_STARTED contract
// is deliberately non-idempotent.
func (e *QuestEngine) StartQuest(userID, questID string) (*models.UserProgress, error) {
	quest, err := e.loadQuest(questID)
	if err != nil {
		return nil, err
	}

	unlock := e.lockProgress(userID, questID)
	defer unlock()

	var existing models.UserProgress
	err = e.DB.Where("user_id = ? AND quest_id = ?", userID, questID).First(&existing).Error
	if err == nil {
		return nil, questErr(ErrCodeAlreadyStarted, "quest already started")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup progress: %w", err)
	}

	if len(quest.Prerequisites) > 0 {
		var completed int64
		err = e.DB.Model(&models.UserProgress{}).
			Where("user_id = ? AND quest_id IN ? AND status = ?",
				userID, []string(quest.Prerequisites), models.QuestStatusCompleted).
			Count(&completed).Error
		if err != nil {
			return nil, fmt.Errorf("check prerequisites: %w", err)
		}
		if completed < int64(len(quest.Prerequisites)) {
			return nil, questErr(ErrCodePrerequisitesNotMet, "prerequisites not met")
		}
	}

	progress := &models.UserProgress{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuestID:        questID,
		Status:         models.QuestStatusInProgress,
		CurrentStep:    1,
		CompletedSteps: []int{},
	}
	if err := e.DB.Create(progress).Error; err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}

	log.Printf("🚀 User %s started quest %s", userID, questID)
	return e.loadProgress(userID, questID)
}

// CompleteStep marks stepNumber complete for the user's attempt at the quest.
// Preconditions are checked in a fixed order so a call that violates several
// always reports the same failure. The step payload is opaque to the engine;
// step-specific verification is a collaborator concern.
//
// Reward issuance on completion is best-effort and never fails the call: the
// step transition itself is committed before rewards are attempted.
func (e *QuestEngine) CompleteStep(userID, questID string, stepNumber int, payload map[string]interface{}) (*models.UserProgress, error) {
	unlock := e.lockProgress(userID, questID)
	defer unlock()

	var quest *models.Quest
	var completed bool

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var progress models.UserProgress
		err := tx.Where("user_id = ? AND quest_id = ?", userID, questID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return questErr(ErrCodeNotStarted, "quest not started")
		}
		if err != nil {
			return fmt.Errorf("lookup progress: %w", err)
		}

		if progress.Status == models.QuestStatusCompleted {
			return questErr(ErrCodeAlreadyCompleted, "quest already completed")
		}

		var q models.Quest
		if err := tx.Preload("Steps", orderSteps).Preload("Rewards.NFTBadge").
			First(&q, "id = ?", questID).Error; err != nil {
			return fmt.Errorf("load quest: %w", err)
		}
		quest = &q

		stepExists := false
		for _, s := range q.Steps {
			if s.StepNumber == stepNumber {
				stepExists = true
				break
			}
		}
		if !stepExists {
			return questErr(ErrCodeStepNotFound, "step not found")
		}

		if progress.HasStep(stepNumber) {
			return questErr(ErrCodeStepAlreadyCompleted, "step already completed")
		}

		// Sequential completion: every earlier step must already be done,
		// so CompletedSteps is always a strict prefix {1,…,k}.
		if stepNumber > 1 && progress.CompletedBefore(stepNumber) != stepNumber-1 {
			return questErr(ErrCodePreviousStepsRequired, "previous steps must be completed first")
		}

		progress.CompletedSteps = append(progress.CompletedSteps, stepNumber)
		completed = len(progress.CompletedSteps) == len(q.Steps)

		if completed {
			now := time.Now()
			progress.CurrentStep = stepNumber
			progress.Status = models.QuestStatusCompleted
			progress.CompletedAt = &now
		} else {
			progress.CurrentStep = stepNumber + 1
		}

		if err := tx.Save(&progress).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		if completed {
			// Base completion grant, independent of any experience reward
			// the quest defines. Committed atomically with the transition.
			err := tx.Model(&models.UserProfile{}).Where("user_id = ?", userID).
				Updates(map[string]interface{}{
					"total_quests_completed": gorm.Expr("total_quests_completed + ?", 1),
					"experience":             gorm.Expr("experience + ?", BaseCompletionXP),
				}).Error
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		e.AwardQuestRewards(userID, quest)
		log.Printf("🏆 User %s completed quest %s", userID, questID)
	}

	return e.loadProgress(userID, questID)
}

// AwardQuestRewards issues the quest's rewards to the user, best-effort.
// Each reward is attempted independently; a failure is logged and the rest
// are still tried. Badge grants are idempotent per (user, badge); experience
// grants are not deduplicated — the engine invokes this exactly once per
// completion transition.
func (e *QuestEngine) AwardQuestRewards(userID string, quest *models.Quest) {
	for _, reward := range quest.Rewards {
		switch reward.Type {
		case models.RewardTypeNFTBadge:
			if reward.NFTBadgeID == nil {
				continue
			}
			var count int64
			err := e.DB.Model(&models.UserNFTBadge{}).
				Where("user_id = ? AND nft_badge_id = ?", userID, *reward.NFTBadgeID).
				Count(&count).Error
			if err != nil {
				log.Printf("⚠️  Badge award check failed for user %s badge %s: %v", userID, *reward.NFTBadgeID, err)
				continue
			}
			if count > 0 {
				continue
			}
			userBadge := models.UserNFTBadge{
				ID:         uuid.NewString(),
				UserID:     userID,
				NFTBadgeID: *reward.NFTBadgeID,
			}
			if err := e.DB.Create(&userBadge).Error; err != nil {
				log.Printf("⚠️  Badge award failed for user %s badge %s: %v", userID, *reward.NFTBadgeID, err)
				continue
			}
			log.Printf("🎖️ Awarded badge %s to user %s", *reward.NFTBadgeID, userID)

		case models.RewardTypeExperience:
			if reward.Amount <= 0 {
				continue
			}
			err := e.DB.Model(&models.UserProfile{}).Where("user_id = ?", userID).
				UpdateColumn("experience", gorm.Expr("experience + ?", reward.Amount)).Error
			if err != nil {
				log.Printf("⚠️  XP award failed for user %s: %v", userID, err)
				continue
			}
			log.Printf("🎮 Awarded %d XP to user %s", reward.Amount, userID)
		}
	}
}

// GetUserProgress returns all of the user's progress records, each joined
// with its quest definition, most recently started first.
func (e *QuestEngine) GetUserProgress(userID string) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	err := e.DB.Where("user_id = ?", userID).
		Preload("Quest.Steps", orderSteps).
		Preload("Quest.Rewards.NFTBadge").
		Order("started_at DESC").
		Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return progress, nil
}

func (e *QuestEngine) loadQuest(questID string) (*models.Quest, error) {
	var quest models.Quest
	err := e.DB.Preload("Steps", orderSteps).Preload("Rewards.NFTBadge").
		First(&quest, "id = ?", questID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, questErr(ErrCodeNotFound, "quest not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load quest: %w", err)
	}
	if !quest.IsActive {
		return nil, questErr(ErrCodeNotFound, "quest is not available")
	}
	return &quest, nil
}

func (e *QuestEngine) loadProgress(userID, questID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := e.DB.Where("user_id = ? AND quest_id = ?", userID, questID).
		Preload("Quest.Steps", orderSteps).
		Preload("Quest.Rewards.NFTBadge").
		First(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("reload progress: %w", err)
	}
	return &progress, nil
}

func orderSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_number ASC")
}
