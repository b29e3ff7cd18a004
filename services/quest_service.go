package services

import (
	"errors"
	"fmt"
	"time"

	"stacksquest-api/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type QuestService struct {
	DB *gorm.DB
}

func NewQuestService(db *gorm.DB) *QuestService {
	return &QuestService{DB: db}
}

// ListActiveQuests returns all active quests with steps ordered and rewards
// joined, easiest first.
func (s *QuestService) ListActiveQuests(category, difficulty string) ([]models.Quest, error) {
	query := s.DB.Where("is_active = ?", true).
		Preload("Steps", orderSteps).
		Preload("Rewards.NFTBadge").
		Order("difficulty ASC").Order("created_at ASC")

	if category != "" && category != "ALL" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" && difficulty != "ALL" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var quests []models.Quest
	if err := query.Find(&quests).Error; err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	return quests, nil
}

// GetQuest returns one active quest by id.
func (s *QuestService) GetQuest(questID string) (*models.Quest, error) {
	var quest models.Quest
	err := s.DB.Preload("Steps", orderSteps).Preload("Rewards.NFTBadge").
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

// ProgressFor returns the user's progress record for a quest, or nil if the
// quest was never started.
func (s *QuestService) ProgressFor(userID, questID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := s.DB.Where("user_id = ? AND quest_id = ?", userID, questID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup progress: %w", err)
	}
	return &progress, nil
}

// NewQuestInput is the admin creation payload. Step numbers are assigned
// from list order so they are always contiguous starting at 1.
type NewQuestInput struct {
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Category      models.QuestCategory   `json:"category"`
	Difficulty    models.QuestDifficulty `json:"difficulty"`
	EstimatedTime int                    `json:"estimated_time"`
	Prerequisites []string               `json:"prerequisites"`
	PublishAt     *time.Time             `json:"publish_at"`
	Steps         []NewQuestStepInput    `json:"steps"`
	Rewards       []NewQuestRewardInput  `json:"rewards"`
}

type NewQuestStepInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Type        models.QuestStepType `json:"type"`
	Hints       []string             `json:"hints"`
}

type NewQuestRewardInput struct {
	Type        models.QuestRewardType `json:"type"`
	Amount      int64                  `json:"amount"`
	NFTBadgeID  *string                `json:"nft_badge_id"`
	Description string                 `json:"description"`
}

// CreateQuest creates a quest with its steps and rewards in one transaction.
// A quest with a future PublishAt is created inactive and flipped active by
// the publish scheduler.
func (s *QuestService) CreateQuest(input NewQuestInput) (*models.Quest, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("quest title is required")
	}

	quest := &models.Quest{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Slug:          slug.Make(input.Title),
		Description:   input.Description,
		Category:      input.Category,
		Difficulty:    input.Difficulty,
		EstimatedTime: input.EstimatedTime,
		Prerequisites: input.Prerequisites,
		IsActive:      input.PublishAt == nil,
		PublishAt:     input.PublishAt,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quest).Error; err != nil {
			return err
		}

		for i, stepIn := range input.Steps {
			step := models.QuestStep{
				ID:          uuid.NewString(),
				QuestID:     quest.ID,
				StepNumber:  i + 1,
				Title:       stepIn.Title,
				Description: stepIn.Description,
				Type:        stepIn.Type,
				Hints:       stepIn.Hints,
			}
			if step.Type == "" {
				step.Type = models.StepTypeTutorial
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
		}

		for _, rewardIn := range input.Rewards {
			reward := models.QuestReward{
				ID:          uuid.NewString(),
				QuestID:     quest.ID,
				Type:        rewardIn.Type,
				Amount:      rewardIn.Amount,
				NFTBadgeID:  rewardIn.NFTBadgeID,
				Description: rewardIn.Description,
			}
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create quest: %w", err)
	}

	var created models.Quest
	if err := s.DB.Preload("Steps", orderSteps).Preload("Rewards.NFTBadge").
		First(&created, "id = ?", quest.ID).Error; err != nil {
		return nil, fmt.Errorf("reload quest: %w", err)
	}
	return &created, nil
}
