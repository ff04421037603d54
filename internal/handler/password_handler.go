package handler

import (
	"net/http"

	"accounts-service/pkg/logger"
	"accounts-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PasswordHandler serves the forgot/reset/change password endpoints.
type PasswordHandler struct {
	svc     AuthService
	limiter AttemptLimiter
}

// NewPasswordHandler wires the handler.
func NewPasswordHandler(svc AuthService, limiter AttemptLimiter) *PasswordHandler {
	return &PasswordHandler{svc: svc, limiter: limiter}
}

// ForgotPassword always reports success so the endpoint cannot be used to
// probe registered emails.
func (h *PasswordHandler) ForgotPassword(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPasswordFlow("forgot")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse forgot-password request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	allowed, err := h.limiter.Allow(c.Request().Context(), "forgot:"+req.Email+":"+c.RealIP())
	if err != nil {
		log.Warn("Attempt limiter unavailable", zap.Error(err))
	}
	if !allowed {
		prometheus.RecordAuthError("rate_limited")
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts, try again later"})
	}

	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		log.Error("Forgot-password failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("forgot_password_failed")
		return respondError(c, err, echo.Map{"email": req.Email})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// VerifyResetToken lets the reset form validate its token before the user
// types a new password.
func (h *PasswordHandler) VerifyResetToken(c echo.Context) error {
	log := logger.FromContext(c)

	token := c.Param("token")
	if _, err := h.svc.VerifyResetToken(c.Request().Context(), token); err != nil {
		log.Info("Reset token rejected", zap.Error(err))
		prometheus.RecordAuthError("invalid_reset_token")
		return respondError(c, err, nil)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *PasswordHandler) ResetPassword(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPasswordFlow("reset")

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse reset-password request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and password are required"})
	}

	if err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		log.Error("Reset-password failed", zap.Error(err))
		prometheus.RecordAuthError("reset_password_failed")
		return respondError(c, err, nil)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ChangePassword is the authenticated password change.
func (h *PasswordHandler) ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPasswordFlow("change")

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse change-password request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current and new password are required"})
	}

	email := sessionEmail(c)
	if err := h.svc.UpdatePassword(c.Request().Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		log.Error("Change-password failed", zap.String("email", email), zap.Error(err))
		prometheus.RecordAuthError("change_password_failed")
		return respondError(c, err, nil)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
