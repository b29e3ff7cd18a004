package services

import (
	"testing"

	"stacksquest-api/models"
	"stacksquest-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLoginOrCreate_ProvisionsNewUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.LoginOrCreate("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	require.NoError(t, err)
	assert.Equal(t, "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", user.StacksAddress)
	require.NotNil(t, user.Profile)
	assert.Equal(t, 1, user.Profile.Level)
	assert.Equal(t, int64(0), user.Profile.Experience)
	assert.Equal(t, int64(0), user.Profile.TotalQuestsCompleted)
}

func TestLoginOrCreate_ReturnsExistingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	first, err := svc.LoginOrCreate("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
	require.NoError(t, err)
	second, err := svc.LoginOrCreate("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("ST3AM1A56AK2C1XAFJ4K80QBF6JAS4FE2BDJ92G0F", strPtr("satoshi"), strPtr("s@example.com"))
	require.NoError(t, err)

	_, err = svc.Register("ST3AM1A56AK2C1XAFJ4K80QBF6JAS4FE2BDJ92G0F", nil, nil)
	requireCode(t, err, ErrCodeAlreadyExists)

	_, err = svc.Register("ST3NBRSFKX28FQ2ZJ1MAKX58HKHSDGNV5N7R21XCP", strPtr("satoshi"), nil)
	requireCode(t, err, ErrCodeAlreadyExists)

	_, err = svc.Register("ST3NBRSFKX28FQ2ZJ1MAKX58HKHSDGNV5N7R21XCP", strPtr("hal"), strPtr("s@example.com"))
	requireCode(t, err, ErrCodeAlreadyExists)
}

func TestGetUser_JoinsProfileProgressBadges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)
	engine := NewQuestEngine(db)

	user, err := svc.LoginOrCreate("ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5")
	require.NoError(t, err)

	badge := createBadge(t, db, "joined-badge")
	quest := createQuest(t, db, "Joined Quest", 1, nil,
		models.QuestReward{Type: models.RewardTypeNFTBadge, NFTBadgeID: &badge.ID})

	_, err = engine.StartQuest(user.ID, quest.ID)
	require.NoError(t, err)
	_, err = engine.CompleteStep(user.ID, quest.ID, 1, nil)
	require.NoError(t, err)

	loaded, err := svc.GetUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, int64(1), loaded.Profile.TotalQuestsCompleted)
	require.Len(t, loaded.Progress, 1)
	require.NotNil(t, loaded.Progress[0].Quest)
	require.Len(t, loaded.NFTBadges, 1)
	require.NotNil(t, loaded.NFTBadges[0].NFTBadge)
	assert.Equal(t, "joined-badge", loaded.NFTBadges[0].NFTBadge.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.GetUser("missing-id")
	requireCode(t, err, ErrCodeNotFound)
}
