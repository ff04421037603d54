package handler

import (
	"net/http"

	"accounts-service/pkg/logger"
	"accounts-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// VerifyHandler serves the email verification endpoints.
type VerifyHandler struct {
	svc AuthService
}

// NewVerifyHandler wires the handler.
func NewVerifyHandler(svc AuthService) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

func (h *VerifyHandler) VerifyEmail(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.EmailVerifyCounter.Inc()

	token := c.Param("token")
	user, err := h.svc.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		log.Info("Email verification rejected", zap.Error(err))
		prometheus.RecordAuthError("email_verify_failed")
		return respondError(c, err, nil)
	}

	log.Info("Email verified", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"email":   user.Email,
	})
}

func (h *VerifyHandler) ResendVerification(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse resend-verification request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	if err := h.svc.ResendVerification(c.Request().Context(), req.Email); err != nil {
		log.Error("Resend-verification failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("resend_verification_failed")
		return respondError(c, err, echo.Map{"email": req.Email})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
