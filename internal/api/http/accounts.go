package httpapi

import (
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/agro-weather/internal/auth"
	"github.com/i474232898/agro-weather/internal/store"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type favoriteRequest struct {
	City string `json:"city" validate:"required,max=100"`
}

// RegisterAccountRoutes wires registration, login and the favorites list.
func RegisterAccountRoutes(app *fiber.App, manager *auth.Manager, accounts store.Accounts) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/register", func(c *fiber.Ctx) error {
		var req credentials
		if err := bindCredentials(c, &req); err != nil {
			return err
		}

		token, user, err := manager.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrUserExists) {
				return fiber.NewError(fiber.StatusBadRequest, "User already exists")
			}
			log.Printf("ERROR: register %s: %v", req.Email, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Server error")
		}
		return c.JSON(sessionResponse(token, user))
	})

	authGroup.Post("/login", func(c *fiber.Ctx) error {
		var req credentials
		if err := bindCredentials(c, &req); err != nil {
			return err
		}

		token, user, err := manager.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
			}
			log.Printf("ERROR: login %s: %v", req.Email, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Server error")
		}
		return c.JSON(sessionResponse(token, user))
	})

	favs := app.Group("/api/favorites", manager.Middleware())

	favs.Get("/", func(c *fiber.Ctx) error {
		list, err := accounts.Favorites(c.UserContext(), auth.UserID(c))
		if err != nil {
			return favoritesError(err)
		}
		return c.JSON(fiber.Map{"favorites": list})
	})

	favs.Post("/", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.City = strings.TrimSpace(req.City)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "City required")
		}

		list, err := accounts.AddFavorite(c.UserContext(), auth.UserID(c), req.City)
		if err != nil {
			return favoritesError(err)
		}
		return c.JSON(fiber.Map{"favorites": list})
	})

	favs.Delete("/:city", func(c *fiber.Ctx) error {
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city")
		}

		list, err := accounts.RemoveFavorite(c.UserContext(), auth.UserID(c), city)
		if err != nil {
			return favoritesError(err)
		}
		return c.JSON(fiber.Map{"favorites": list})
	})
}

func bindCredentials(c *fiber.Ctx, req *credentials) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email and password required")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func sessionResponse(token string, user store.User) fiber.Map {
	return fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"favorites": user.Favorites,
		},
	}
}

func favoritesError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	log.Printf("ERROR: favorites: %v", err)
	return fiber.NewError(fiber.StatusInternalServerError, "Server error")
}
