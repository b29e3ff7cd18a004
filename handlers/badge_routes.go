// handlers/badge_routes.go
package handlers

import (
	"path/filepath"

	"stacksquest-api/middleware"
	"stacksquest-api/models"
	"stacksquest-api/services"
	"stacksquest-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupBadgeRoutes(app *fiber.App, badgeService *services.BadgeService, tokens *services.TokenService) {
	badges := app.Group("/api/badges")

	badges.Get("/", middleware.OptionalAuth(tokens), func(c *fiber.Ctx) error {
		badgeList, err := badgeService.ListActiveBadges(c.Query("category"), c.Query("rarity"))
		if err != nil {
			return serviceError(c, err, "failed to fetch badges")
		}

		userID := middleware.UserID(c)
		data := make([]fiber.Map, 0, len(badgeList))
		for _, badge := range badgeList {
			entry := fiber.Map{"badge": badge, "is_earned": false}
			if userID != "" {
				earned, err := badgeService.HasBadge(userID, badge.ID)
				if err != nil {
					return serviceError(c, err, "failed to check earned badges")
				}
				entry["is_earned"] = earned
			}
			data = append(data, entry)
		}

		return c.JSON(fiber.Map{"success": true, "data": data})
	})

	badges.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := badgeService.GetBadgeStats()
		if err != nil {
			return serviceError(c, err, "failed to fetch badge statistics")
		}
		return c.JSON(fiber.Map{"success": true, "data": stats})
	})

	badges.Get("/user", middleware.Protect(tokens), func(c *fiber.Ctx) error {
		earned, err := badgeService.GetUserBadges(middleware.UserID(c))
		if err != nil {
			return serviceError(c, err, "failed to fetch user badges")
		}
		return c.JSON(fiber.Map{"success": true, "data": earned})
	})

	badges.Get("/:id", func(c *fiber.Ctx) error {
		badge, err := badgeService.GetBadge(c.Params("id"))
		if err != nil {
			return serviceError(c, err, "failed to fetch badge")
		}
		return c.JSON(fiber.Map{"success": true, "data": badge})
	})

	// Admin: create a badge definition with optional artwork upload.
	// Artwork goes to R2 when configured, local uploads/ otherwise.
	admin := app.Group("/api/admin/badges", middleware.Protect(tokens))

	admin.Post("/", func(c *fiber.Ctx) error {
		badge := &models.NFTBadge{
			Code:        c.FormValue("code"),
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			Category:    models.BadgeCategory(c.FormValue("category", string(models.BadgeCategoryAchievement))),
			Rarity:      models.BadgeRarity(c.FormValue("rarity", string(models.BadgeRarityCommon))),
			IsActive:    true,
		}

		if artFile, err := c.FormFile("image"); err == nil && artFile.Size > 0 {
			ext := filepath.Ext(artFile.Filename)
			if ext == "" {
				ext = ".png"
			}
			key := "badges/" + uuid.NewString() + ext

			if utils.R2Enabled() {
				imageURL, err := utils.UploadFileToR2(artFile, key)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"success": false,
						"error":   "failed to upload badge artwork",
					})
				}
				badge.ImageURL = imageURL
			} else {
				localPath, err := utils.SaveUpload(artFile, key)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"success": false,
						"error":   "failed to save badge artwork",
					})
				}
				badge.ImageURL = "/" + localPath
			}
		}

		if err := badgeService.CreateBadge(badge); err != nil {
			return serviceError(c, err, "failed to create badge")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": badge})
	})
}
