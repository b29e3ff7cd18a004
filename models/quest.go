package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestCategory groups quests by learning topic
type QuestCategory string

const (
	QuestCategoryBasics         QuestCategory = "basics"
	QuestCategoryWallet         QuestCategory = "wallet"
	QuestCategoryTransactions   QuestCategory = "transactions"
	QuestCategorySmartContracts QuestCategory = "smart_contracts"
	QuestCategoryNFTs           QuestCategory = "nfts"
	QuestCategoryDeFi           QuestCategory = "defi"
	QuestCategoryAdvanced       QuestCategory = "advanced"
)

type QuestDifficulty string

const (
	QuestDifficultyBeginner     QuestDifficulty = "beginner"
	QuestDifficultyIntermediate QuestDifficulty = "intermediate"
	QuestDifficultyAdvanced     QuestDifficulty = "advanced"
	QuestDifficultyExpert       QuestDifficulty = "expert"
)

// QuestStepType is not interpreted server-side — step validation
// (wallet connect, tx confirmation, quiz answers) happens on the client
// or in a dedicated verifier, never in the progression engine.
type QuestStepType string

const (
	StepTypeTutorial            QuestStepType = "tutorial"
	StepTypeTransaction         QuestStepType = "transaction"
	StepTypeContractInteraction QuestStepType = "contract_interaction"
	StepTypeQuiz                QuestStepType = "quiz"
	StepTypePractical           QuestStepType = "practical"
)

// Quest is a learning unit composed of ordered steps and rewards.
// Step numbers are 1-based and contiguous per quest.
type Quest struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string          `gorm:"not null" json:"title"`
	Slug          string          `gorm:"uniqueIndex" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	Category      QuestCategory   `gorm:"index;not null" json:"category"`
	Difficulty    QuestDifficulty `gorm:"index;not null" json:"difficulty"`
	EstimatedTime int             `json:"estimated_time"` // minutes

	// Prerequisites holds quest IDs that must be COMPLETED before starting
	Prerequisites datatypes.JSONSlice[string] `json:"prerequisites"`

	Steps   []QuestStep   `gorm:"foreignKey:QuestID" json:"steps,omitempty"`
	Rewards []QuestReward `gorm:"foreignKey:QuestID" json:"rewards,omitempty"`

	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	PublishAt *time.Time `json:"publish_at,omitempty"` // scheduled activation

	Timestamps
}

type QuestStep struct {
	ID          string                      `gorm:"primaryKey;type:uuid" json:"id"`
	QuestID     string                      `gorm:"index:idx_quest_step,unique;not null" json:"quest_id"`
	StepNumber  int                         `gorm:"index:idx_quest_step,unique;not null" json:"step_number"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Type        QuestStepType               `gorm:"not null;default:'tutorial'" json:"type"`
	Hints       datatypes.JSONSlice[string] `json:"hints,omitempty"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

// QuestRewardType discriminates the reward variant
type QuestRewardType string

const (
	RewardTypeNFTBadge   QuestRewardType = "nft_badge"
	RewardTypeExperience QuestRewardType = "experience"
)

// QuestReward is a tagged variant: nft_badge carries NFTBadgeID,
// experience carries Amount.
type QuestReward struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	QuestID     string          `gorm:"index;not null" json:"quest_id"`
	Type        QuestRewardType `gorm:"not null" json:"type"`
	Amount      int64           `json:"amount,omitempty"`
	NFTBadgeID  *string         `gorm:"index" json:"nft_badge_id,omitempty"`
	NFTBadge    *NFTBadge       `gorm:"foreignKey:NFTBadgeID" json:"nft_badge,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
