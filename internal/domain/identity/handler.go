package identity

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
	"github.com/clinicdesk/clinicdesk/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the auth endpoints. Login must be reachable
// without a token; the server's auth middleware skips /auth/login.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/login", h.Login)
	g.GET("/me", h.Me)
	g.POST("/logout", h.Logout)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/change-password", h.ChangePassword)
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	result, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Login successful", result)
}

func (h *Handler) Me(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return apperr.Authf("authentication required")
	}
	profile, err := h.svc.Me(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respond.OK(c, "User fetched successfully", profile)
}

// Logout is a no-op server side; clients discard the token.
func (h *Handler) Logout(c echo.Context) error {
	return respond.OK(c, "Logged out successfully", nil)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return apperr.Authf("authentication required")
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), actor.UserID, in.Name)
	if err != nil {
		return err
	}
	return respond.OK(c, "Profile updated successfully", u)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return apperr.Authf("authentication required")
	}
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), actor.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	return respond.OK(c, "Password changed successfully", nil)
}
