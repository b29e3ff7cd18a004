// handlers/quest_routes.go
package handlers

import (
	"strconv"

	"stacksquest-api/middleware"
	"stacksquest-api/models"
	"stacksquest-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService, engine *services.QuestEngine, tokens *services.TokenService) {
	quests := app.Group("/api/quests")

	// Public listing — authenticated callers get their progress attached
	quests.Get("/", middleware.OptionalAuth(tokens), func(c *fiber.Ctx) error {
		questList, err := questService.ListActiveQuests(c.Query("category"), c.Query("difficulty"))
		if err != nil {
			return serviceError(c, err, "failed to fetch quests")
		}

		userID := middleware.UserID(c)
		data := make([]fiber.Map, 0, len(questList))
		for _, quest := range questList {
			entry := fiber.Map{"quest": quest}
			if userID != "" {
				progress, err := questService.ProgressFor(userID, quest.ID)
				if err != nil {
					return serviceError(c, err, "failed to fetch quest progress")
				}
				entry["user_progress"] = progress
			}
			data = append(data, entry)
		}

		return c.JSON(fiber.Map{"success": true, "data": data})
	})

	// Must register before "/:id" so the literal path wins
	quests.Get("/progress", middleware.Protect(tokens), func(c *fiber.Ctx) error {
		progress, err := engine.GetUserProgress(middleware.UserID(c))
		if err != nil {
			return serviceError(c, err, "failed to fetch user progress")
		}
		return c.JSON(fiber.Map{"success": true, "data": progress})
	})

	quests.Get("/:id", middleware.OptionalAuth(tokens), func(c *fiber.Ctx) error {
		quest, err := questService.GetQuest(c.Params("id"))
		if err != nil {
			return serviceError(c, err, "failed to fetch quest")
		}

		response := fiber.Map{"quest": quest}
		if userID := middleware.UserID(c); userID != "" {
			progress, err := questService.ProgressFor(userID, quest.ID)
			if err != nil {
				return serviceError(c, err, "failed to fetch quest progress")
			}
			response["user_progress"] = progress
		}

		return c.JSON(fiber.Map{"success": true, "data": response})
	})

	quests.Post("/:id/start", middleware.Protect(tokens), func(c *fiber.Ctx) error {
		progress, err := engine.StartQuest(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return serviceError(c, err, "failed to start quest")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    progress,
			"message": "Quest started successfully",
		})
	})

	quests.Post("/:id/steps/:stepNumber/complete", middleware.Protect(tokens), func(c *fiber.Ctx) error {
		stepNumber, err := strconv.Atoi(c.Params("stepNumber"))
		if err != nil || stepNumber < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid step number",
			})
		}

		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		_ = c.BodyParser(&body) // step payload is optional and opaque

		progress, err := engine.CompleteStep(middleware.UserID(c), c.Params("id"), stepNumber, body.Data)
		if err != nil {
			return serviceError(c, err, "failed to complete quest step")
		}

		message := "Step completed successfully"
		if progress.Status == models.QuestStatusCompleted {
			message = "Quest completed!"
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    progress,
			"message": message,
		})
	})

	// Admin
	admin := app.Group("/api/admin/quests", middleware.Protect(tokens))

	admin.Post("/", func(c *fiber.Ctx) error {
		var input services.NewQuestInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid JSON",
			})
		}
		quest, err := questService.CreateQuest(input)
		if err != nil {
			return serviceError(c, err, "failed to create quest")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": quest})
	})
}

// serviceError maps typed engine errors to transport statuses; anything else
// is an internal error.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	if qe, ok := services.AsQuestError(err); ok {
		status := fiber.StatusBadRequest
		if qe.Code == services.ErrCodeNotFound || qe.Code == services.ErrCodeStepNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   qe.Message,
			"code":    qe.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   fallback,
	})
}
