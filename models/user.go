package models

// User is keyed by Stacks wallet address. Login is login-or-create:
// the first login for an unseen address provisions the user and profile.
type User struct {
	ID            string  `gorm:"primaryKey;type:uuid" json:"id"`
	StacksAddress string  `gorm:"uniqueIndex;not null" json:"stacks_address"`
	Username      *string `gorm:"uniqueIndex" json:"username,omitempty"`
	Email         *string `gorm:"uniqueIndex" json:"email,omitempty"`

	Profile   *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Progress  []UserProgress `gorm:"foreignKey:UserID" json:"progress,omitempty"`
	NFTBadges []UserNFTBadge `gorm:"foreignKey:UserID" json:"nft_badges,omitempty"`

	Timestamps
}

// UserProfile holds per-user aggregate counters. Mutated only by the
// progression engine: quest completion bumps TotalQuestsCompleted plus the
// base experience grant; experience-type rewards add on top of that.
type UserProfile struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string  `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`

	Level                int   `gorm:"default:1" json:"level"`
	Experience           int64 `gorm:"default:0" json:"experience"`
	TotalQuestsCompleted int64 `gorm:"default:0" json:"total_quests_completed"`

	Timestamps
}
