package handlers

import (
	"gatekeep-backend/internal/auth"
	"gatekeep-backend/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// errorResponse maps service errors onto the wire: taxonomy errors become
// 400 with their message, everything else becomes an opaque 500.
func errorResponse(c *fiber.Ctx, err error) error {
	if auth.IsClientError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

// RegisterRequest is the registration payload; password2 must match
// password1.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	pair, err := h.authService.Register(c.UserContext(), input.Email, input.Password1, input.Password2)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(pair)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	pair, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(pair)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input RefreshRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	pair, err := h.authService.Refresh(c.UserContext(), input.RefreshToken)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(pair)
}

type VerifyRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var input VerifyRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	userID, err := h.authService.Verify(input.AccessToken)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"user_id": userID,
	})
}

type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	var input RevokeRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	if err := h.authService.Revoke(c.UserContext(), input.RefreshToken); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "token has been revoked",
	})
}

// GetMe returns the account of the bearer identified by the Protected
// middleware.
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	claims := c.Locals("user").(*token.Claims)

	user, err := h.authService.UserByID(c.UserContext(), claims.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "user not found",
		})
	}

	return c.JSON(user)
}
