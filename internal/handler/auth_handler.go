package handler

import (
	"net/http"

	"accounts-service/internal/service"
	"accounts-service/pkg/logger"
	"accounts-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves the sign-in/sign-up/sign-out endpoints.
type AuthHandler struct {
	svc     AuthService
	captcha CaptchaVerifier
	limiter AttemptLimiter
}

// NewAuthHandler wires the handler.
func NewAuthHandler(svc AuthService, captcha CaptchaVerifier, limiter AttemptLimiter) *AuthHandler {
	return &AuthHandler{svc: svc, captcha: captcha, limiter: limiter}
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignInCounter.Inc()

	// Parse request
	var req struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		Provider     string `json:"provider,omitempty"`
		CaptchaToken string `json:"captcha_token,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sign-in request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_sign_in")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	allowed, err := h.limiter.Allow(c.Request().Context(), "sign-in:"+req.Email+":"+c.RealIP())
	if err != nil {
		log.Warn("Attempt limiter unavailable", zap.Error(err))
	}
	if !allowed {
		log.Warn("Sign-in rate limited", zap.String("email", req.Email))
		prometheus.RecordAuthError("rate_limited")
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts, try again later", "email": req.Email})
	}

	if req.CaptchaToken != "" {
		ok, err := h.captcha.Verify(c.Request().Context(), req.CaptchaToken, c.RealIP())
		if err != nil {
			log.Error("CAPTCHA verification error", zap.Error(err))
			prometheus.RecordAuthError("captcha_error")
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "captcha verification unavailable", "email": req.Email})
		}
		if !ok {
			prometheus.RecordAuthError("captcha_failed")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "captcha verification failed", "email": req.Email})
		}
	}

	res, err := h.svc.SignIn(c.Request().Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		Provider: req.Provider,
	})
	if err != nil {
		log.Error("Sign-in failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("sign_in_failed")
		return respondError(c, err, echo.Map{"email": req.Email})
	}

	prometheus.IncreaseActiveSessions()
	log.Info("User signed in",
		zap.String("email", res.User.Email),
		zap.String("role", res.User.Role),
		zap.String("redirect_to", res.RedirectTo))

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"redirect_to": res.RedirectTo,
		"session":     res.Session,
		"user": map[string]interface{}{
			"id":    res.User.ID,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
	})
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignUpCounter.Inc()

	// Parse request
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Provider string `json:"provider,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sign-up request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_sign_up")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	res, err := h.svc.SignUp(c.Request().Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Provider: req.Provider,
	})
	if err != nil {
		log.Error("Sign-up failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("sign_up_failed")
		return respondError(c, err, echo.Map{"email": req.Email})
	}

	if res.Session != nil {
		prometheus.IncreaseActiveSessions()
	}
	log.Info("User registered",
		zap.String("email", res.User.Email),
		zap.String("username", res.Username))

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"session": res.Session,
		"user": map[string]interface{}{
			"id":       res.User.ID,
			"email":    res.User.Email,
			"username": res.Username,
		},
	})
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Provider string `json:"provider,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	token, _ := c.Get("session_token").(string)
	if err := h.svc.SignOut(c.Request().Context(), req.Provider, token); err != nil {
		log.Error("Sign-out failed", zap.Error(err))
		return respondError(c, err, nil)
	}

	prometheus.DecreaseActiveSessions()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// OAuthStart returns the provider authorization URL for a social login
func (h *AuthHandler) OAuthStart(c echo.Context) error {
	log := logger.FromContext(c)

	social := c.Param("social")
	redirectTo := c.QueryParam("redirect_to")
	providerName := c.QueryParam("provider")

	url, err := h.svc.OAuthURL(providerName, social, redirectTo)
	if err != nil {
		log.Error("OAuth start failed", zap.String("social", social), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "oauth sign-in unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": url})
}
