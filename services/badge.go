package services

import (
	"errors"
	"fmt"

	"stacksquest-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// ListActiveBadges returns active badge definitions, optionally filtered.
func (s *BadgeService) ListActiveBadges(category, rarity string) ([]models.NFTBadge, error) {
	query := s.DB.Where("is_active = ?", true).
		Order("rarity ASC").Order("category ASC").Order("created_at ASC")

	if category != "" && category != "ALL" {
		query = query.Where("category = ?", category)
	}
	if rarity != "" && rarity != "ALL" {
		query = query.Where("rarity = ?", rarity)
	}

	var badges []models.NFTBadge
	if err := query.Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// GetBadge returns one active badge definition by id.
func (s *BadgeService) GetBadge(badgeID string) (*models.NFTBadge, error) {
	var badge models.NFTBadge
	err := s.DB.First(&badge, "id = ?", badgeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, questErr(ErrCodeNotFound, "badge not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load badge: %w", err)
	}
	if !badge.IsActive {
		return nil, questErr(ErrCodeNotFound, "badge is not available")
	}
	return &badge, nil
}

// GetUserBadges returns the badges a user has earned, most recent first.
func (s *BadgeService) GetUserBadges(userID string) ([]models.UserNFTBadge, error) {
	var earned []models.UserNFTBadge
	err := s.DB.Where("user_id = ?", userID).
		Preload("NFTBadge").
		Order("earned_at DESC").
		Find(&earned).Error
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return earned, nil
}

// HasBadge reports whether the user already holds the badge.
func (s *BadgeService) HasBadge(userID, badgeID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.UserNFTBadge{}).
		Where("user_id = ? AND nft_badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check badge: %w", err)
	}
	return count > 0, nil
}

// CreateBadge registers a new badge definition. Code must be unique.
func (s *BadgeService) CreateBadge(badge *models.NFTBadge) error {
	if badge.Code == "" || badge.Name == "" {
		return fmt.Errorf("badge code and name are required")
	}
	var count int64
	if err := s.DB.Model(&models.NFTBadge{}).Where("code = ?", badge.Code).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup badge code: %w", err)
	}
	if count > 0 {
		return questErr(ErrCodeAlreadyExists, "badge code already exists")
	}
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	if err := s.DB.Create(badge).Error; err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	return nil
}

// BadgeStats aggregates the badge collection for the public stats endpoint.
type BadgeStats struct {
	TotalBadges       int64            `json:"total_badges"`
	TotalEarnedBadges int64            `json:"total_earned_badges"`
	BadgesByCategory  map[string]int64 `json:"badges_by_category"`
	BadgesByRarity    map[string]int64 `json:"badges_by_rarity"`
	RecentAwards      []RecentAward    `json:"recent_awards"`
}

type RecentAward struct {
	BadgeID     string `json:"badge_id"`
	BadgeName   string `json:"badge_name"`
	BadgeRarity string `json:"badge_rarity"`
	UserID      string `json:"user_id"`
	EarnedAt    string `json:"earned_at"`
}

// GetBadgeStats computes collection-wide counts plus the ten most recent
// awards.
func (s *BadgeService) GetBadgeStats() (*BadgeStats, error) {
	stats := &BadgeStats{
		BadgesByCategory: map[string]int64{},
		BadgesByRarity:   map[string]int64{},
	}

	if err := s.DB.Model(&models.NFTBadge{}).Where("is_active = ?", true).Count(&stats.TotalBadges).Error; err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}
	if err := s.DB.Model(&models.UserNFTBadge{}).Count(&stats.TotalEarnedBadges).Error; err != nil {
		return nil, fmt.Errorf("count earned badges: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byCategory []bucket
	err := s.DB.Model(&models.NFTBadge{}).
		Select("category AS key, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, fmt.Errorf("group by category: %w", err)
	}
	for _, b := range byCategory {
		stats.BadgesByCategory[b.Key] = b.Count
	}

	var byRarity []bucket
	err = s.DB.Model(&models.NFTBadge{}).
		Select("rarity AS key, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("rarity").
		Scan(&byRarity).Error
	if err != nil {
		return nil, fmt.Errorf("group by rarity: %w", err)
	}
	for _, b := range byRarity {
		stats.BadgesByRarity[b.Key] = b.Count
	}

	var recent []models.UserNFTBadge
	err = s.DB.Preload("NFTBadge").
		Order("earned_at DESC").
		Limit(10).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("recent awards: %w", err)
	}
	for _, award := range recent {
		ra := RecentAward{
			BadgeID:  award.NFTBadgeID,
			UserID:   award.UserID,
			EarnedAt: award.EarnedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if award.NFTBadge != nil {
			ra.BadgeName = award.NFTBadge.Name
			ra.BadgeRarity = string(award.NFTBadge.Rarity)
		}
		stats.RecentAwards = append(stats.RecentAwards, ra)
	}

	return stats, nil
}
