package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestStatus — absence of a UserProgress row means not started; no
// NOT_STARTED value is ever persisted.
type QuestStatus string

const (
	QuestStatusInProgress QuestStatus = "in_progress"
	QuestStatusCompleted  QuestStatus = "completed"
)

// UserProgress tracks a user's attempt at one quest. At most one row per
// (user, quest) pair. CompletedSteps only ever grows, CurrentStep never
// decreases, and Status moves in_progress → completed exactly once.
type UserProgress struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"index:idx_user_quest,unique;not null" json:"user_id"`
	QuestID string `gorm:"index:idx_user_quest,unique;not null" json:"quest_id"`

	Status         QuestStatus              `gorm:"not null;default:'in_progress'" json:"status"`
	CurrentStep    int                      `gorm:"default:1" json:"current_step"`
	CompletedSteps datatypes.JSONSlice[int] `json:"completed_steps"`

	StartedAt   time.Time  `gorm:"autoCreateTime" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Quest *Quest `gorm:"foreignKey:QuestID" json:"quest,omitempty"`
}

// HasStep reports whether stepNumber is already in CompletedSteps.
func (p *UserProgress) HasStep(stepNumber int) bool {
	for _, s := range p.CompletedSteps {
		if s == stepNumber {
			return true
		}
	}
	return false
}

// CompletedBefore counts completed steps strictly below stepNumber.
func (p *UserProgress) CompletedBefore(stepNumber int) int {
	n := 0
	for _, s := range p.CompletedSteps {
		if s < stepNumber {
			n++
		}
	}
	return n
}
