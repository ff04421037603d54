package handler

import (
	"net/http"

	"accounts-service/internal/service"
	"accounts-service/pkg/logger"
	"accounts-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	svc AuthService
}

// NewAccountHandler wires the handler.
func NewAccountHandler(svc AuthService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAccountOperation("access")

	info, err := h.svc.Account(c.Request().Context(), sessionEmail(c))
	if err != nil {
		log.Error("Account lookup failed", zap.Error(err))
		prometheus.RecordAuthError("account_access_failed")
		return respondError(c, err, nil)
	}

	return c.JSON(http.StatusOK, info)
}

func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAccountOperation("update")

	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse update-account request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	email := sessionEmail(c)
	err := h.svc.UpdateAccount(c.Request().Context(), email, service.UpdateAccountInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		log.Error("Update-account failed", zap.String("email", email), zap.Error(err))
		prometheus.RecordAuthError("account_update_failed")
		return respondError(c, err, nil)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteAccount soft-deletes the authenticated account after password
// re-confirmation and signs the session out.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAccountOperation("delete")

	var req struct {
		Password string `json:"password"`
		Provider string `json:"provider,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse delete-account request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password confirmation is required"})
	}

	email := sessionEmail(c)
	token, _ := c.Get("session_token").(string)
	if err := h.svc.DeleteAccount(c.Request().Context(), email, req.Password, req.Provider, token); err != nil {
		log.Error("Delete-account failed", zap.String("email", email), zap.Error(err))
		prometheus.RecordAuthError("account_delete_failed")
		return respondError(c, err, nil)
	}

	prometheus.DecreaseActiveSessions()
	log.Info("Account deleted", zap.String("email", email))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
