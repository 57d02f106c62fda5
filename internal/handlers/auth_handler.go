package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// setSession mirrors the access token into an HttpOnly cookie for browser
// clients.
func (h *AuthHandler) setSession(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cfg.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return fail(c, err)
	}

	h.setSession(c, resp.AccessToken, h.cfg.JWTAccessExpiry)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return fail(c, err)
	}

	h.setSession(c, resp.AccessToken, h.cfg.JWTAccessExpiry)
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return fail(c, err)
	}

	h.setSession(c, resp.AccessToken, h.cfg.JWTAccessExpiry)
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(&req); err != nil {
		return fail(c, err)
	}

	h.setSession(c, "", -time.Hour)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	user, err := h.authService.Me(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(p, req.Password); err != nil {
		return fail(c, err)
	}

	h.setSession(c, "", -time.Hour)
	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}
