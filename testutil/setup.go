package testutil

import (
	"fmt"
	"testing"

	"stacksquest-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory database and runs the migrations.
// Each call gets its own database, so tests are safe to run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "SetupTestDB: open")

	err = db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Quest{},
		&models.QuestStep{},
		&models.QuestReward{},
		&models.UserProgress{},
		&models.NFTBadge{},
		&models.UserNFTBadge{},
	)
	require.NoError(t, err, "SetupTestDB: migrate")
	return db
}
