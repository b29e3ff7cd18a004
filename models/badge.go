package models

import (
	"time"
)

type BadgeCategory string

const (
	BadgeCategoryAchievement BadgeCategory = "achievement"
	BadgeCategoryMilestone   BadgeCategory = "milestone"
	BadgeCategorySkill       BadgeCategory = "skill"
	BadgeCategorySpecial     BadgeCategory = "special"
)

type BadgeRarity string

const (
	BadgeRarityCommon    BadgeRarity = "common"
	BadgeRarityUncommon  BadgeRarity = "uncommon"
	BadgeRarityRare      BadgeRarity = "rare"
	BadgeRarityEpic      BadgeRarity = "epic"
	BadgeRarityLegendary BadgeRarity = "legendary"
)

// NFTBadge: badge definition mirroring the on-chain badge contract entry.
// ContractTokenID links to the minted SIP-009 token id once known.
type NFTBadge struct {
	ID              string        `gorm:"primaryKey;type:uuid" json:"id"`
	Code            string        `gorm:"uniqueIndex;not null" json:"code"` // e.g., "first-quest"
	Name            string        `gorm:"not null" json:"name"`
	Description     string        `gorm:"type:text" json:"description"`
	ImageURL        string        `gorm:"type:text" json:"image_url"` // R2/CDN URL
	Category        BadgeCategory `gorm:"index;not null;default:'achievement'" json:"category"`
	Rarity          BadgeRarity   `gorm:"index;not null;default:'common'" json:"rarity"`
	ContractTokenID *int64        `json:"contract_token_id,omitempty"`
	IsActive        bool          `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserNFTBadge: awarded instance. The (user, badge) unique index is the
// last line of defense against double-award even if the engine's per-key
// lock is bypassed.
type UserNFTBadge struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"index:idx_user_badge,unique;not null" json:"user_id"`
	NFTBadgeID    string    `gorm:"index:idx_user_badge,unique;not null" json:"nft_badge_id"`
	EarnedAt      time.Time `gorm:"autoCreateTime" json:"earned_at"`
	TransactionID *string   `json:"transaction_id,omitempty"` // on-chain mint tx, filled by sync worker

	NFTBadge *NFTBadge `gorm:"foreignKey:NFTBadgeID" json:"nft_badge,omitempty"`
}

// DefaultBadges are seeded at startup with FirstOrCreate keyed on Code.
var DefaultBadges = []NFTBadge{
	{
		Code:        "first-quest",
		Name:        "First Quest",
		Description: "Completed your first quest",
		Category:    BadgeCategoryAchievement,
		Rarity:      BadgeRarityCommon,
	},
	{
		Code:        "wallet-wizard",
		Name:        "Wallet Wizard",
		Description: "Mastered the wallet basics track",
		Category:    BadgeCategorySkill,
		Rarity:      BadgeRarityUncommon,
	},
	{
		Code:        "contract-caller",
		Name:        "Contract Caller",
		Description: "Made your first smart contract call",
		Category:    BadgeCategorySkill,
		Rarity:      BadgeRarityRare,
	},
	{
		Code:        "stacks-scholar",
		Name:        "Stacks Scholar",
		Description: "Completed every quest in a category",
		Category:    BadgeCategoryMilestone,
		Rarity:      BadgeRarityEpic,
	},
}
