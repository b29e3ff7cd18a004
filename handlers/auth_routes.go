// handlers/auth_routes.go
package handlers

import (
	"stacksquest-api/middleware"
	"stacksquest-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, userService *services.UserService, tokens *services.TokenService) {
	auth := app.Group("/api/auth")

	// Login-or-create by Stacks address
	auth.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			StacksAddress string `json:"stacksAddress"`
		}
		if err := c.BodyParser(&req); err != nil || req.StacksAddress == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "please provide a Stacks address",
			})
		}

		user, err := userService.LoginOrCreate(req.StacksAddress)
		if err != nil {
			return serviceError(c, err, "authentication failed")
		}

		token, err := tokens.Sign(user.ID)
		if err != nil {
			return serviceError(c, err, "failed to issue token")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"user":  user,
				"token": token,
			},
		})
	})

	auth.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			StacksAddress string  `json:"stacksAddress"`
			Username      *string `json:"username"`
			Email         *string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil || req.StacksAddress == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "please provide a Stacks address",
			})
		}

		user, err := userService.Register(req.StacksAddress, req.Username, req.Email)
		if err != nil {
			return serviceError(c, err, "registration failed")
		}

		token, err := tokens.Sign(user.ID)
		if err != nil {
			return serviceError(c, err, "failed to issue token")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"user":  user,
				"token": token,
			},
		})
	})

	auth.Get("/profile", middleware.Protect(tokens), func(c *fiber.Ctx) error {
		user, err := userService.GetUser(middleware.UserID(c))
		if err != nil {
			return serviceError(c, err, "failed to fetch profile")
		}
		return c.JSON(fiber.Map{"success": true, "data": user})
	})
}
