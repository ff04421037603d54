package handler

import (
	"net/http"

	"accounts-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CaptchaHandler lets form clients verify a CAPTCHA token before submitting.
type CaptchaHandler struct {
	verifier CaptchaVerifier
}

// NewCaptchaHandler wires the handler.
func NewCaptchaHandler(verifier CaptchaVerifier) *CaptchaHandler {
	return &CaptchaHandler{verifier: verifier}
}

func (h *CaptchaHandler) Verify(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ok, err := h.verifier.Verify(c.Request().Context(), req.Token, c.RealIP())
	if err != nil {
		log.Error("CAPTCHA verification error", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "captcha verification unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": ok})
}
