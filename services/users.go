package services

import (
	"errors"
	"fmt"
	"log"

	"stacksquest-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// LoginOrCreate resolves a user by Stacks address, provisioning the user and
// a fresh profile on first login.
func (s *UserService) LoginOrCreate(stacksAddress string) (*models.User, error) {
	if stacksAddress == "" {
		return nil, fmt.Errorf("stacks address is required")
	}

	user, err := s.findByAddress(stacksAddress)
	if err == nil {
		log.Printf("👤 User logged in: %s", stacksAddress)
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	newUser := &models.User{
		ID:            uuid.NewString(),
		StacksAddress: stacksAddress,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newUser).Error; err != nil {
			return err
		}
		profile := &models.UserProfile{
			ID:     uuid.NewString(),
			UserID: newUser.ID,
			Level:  1,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("✨ New user created: %s", stacksAddress)
	return s.findByAddress(stacksAddress)
}

// Register creates a user with an explicit username/email. Unlike login,
// an existing address is an error here.
func (s *UserService) Register(stacksAddress string, username, email *string) (*models.User, error) {
	if stacksAddress == "" {
		return nil, fmt.Errorf("stacks address is required")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("stacks_address = ?", stacksAddress).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if count > 0 {
		return nil, questErr(ErrCodeAlreadyExists, "user with this Stacks address already exists")
	}

	if username != nil && *username != "" {
		if err := s.DB.Model(&models.User{}).Where("username = ?", *username).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("lookup username: %w", err)
		}
		if count > 0 {
			return nil, questErr(ErrCodeAlreadyExists, "username is already taken")
		}
	}
	if email != nil && *email != "" {
		if err := s.DB.Model(&models.User{}).Where("email = ?", *email).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		if count > 0 {
			return nil, questErr(ErrCodeAlreadyExists, "email is already registered")
		}
	}

	newUser := &models.User{
		ID:            uuid.NewString(),
		StacksAddress: stacksAddress,
		Username:      username,
		Email:         email,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newUser).Error; err != nil {
			return err
		}
		profile := &models.UserProfile{
			ID:          uuid.NewString(),
			UserID:      newUser.ID,
			DisplayName: username,
			Level:       1,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("✨ New user registered: %s", stacksAddress)
	return s.findByAddress(stacksAddress)
}

// GetUser loads a user by id with profile, progress and badges joined.
func (s *UserService) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Profile").
		Preload("Progress.Quest").
		Preload("NFTBadges.NFTBadge").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, questErr(ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) findByAddress(stacksAddress string) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Profile").
		Preload("Progress.Quest").
		Preload("NFTBadges.NFTBadge").
		Where("stacks_address = ?", stacksAddress).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
