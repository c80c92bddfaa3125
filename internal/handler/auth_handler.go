package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	auth := app.Group("/api/v1/auth")
	auth.Get("/google/login", h.Login)

	// Google redirects here after consent
	app.Get("/auth/callback", h.Callback)
}

// Login redirects to the Google consent screen.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	return c.Redirect().To(h.authService.GetAuthURL(generateState()))
}

// Callback handles the OAuth2 callback from Google.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing authorization code",
		})
	}

	jwt, user, err := h.authService.HandleCallback(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	redirectURL := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(jwt) + "&name=" + url.QueryEscape(user.Nama)
	return c.Redirect().To(redirectURL)
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
