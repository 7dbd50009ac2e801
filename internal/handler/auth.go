package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/school-meeting-booking/internal/config"
	"github.com/example/school-meeting-booking/internal/notifier"
	"github.com/example/school-meeting-booking/internal/utils"
	"github.com/example/school-meeting-booking/internal/verification"
)

// AuthHandler implements the administrator's passwordless login: a
// short-lived code emailed to an allow-listed address, exchanged for a
// JWT session token. The code machinery is the same verification
// service that gates booking confirmation, under a different subject
// prefix and TTL.
type AuthHandler struct {
	Cfg    config.Config
	Codes  *verification.Service
	Notify notifier.Notifier
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, codes *verification.Service, notify notifier.Notifier, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Codes: codes, Notify: notify, Log: log}
}

type requestCodeReq struct {
	Email string `json:"email"`
}

type loginReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RequestCode: issue a login code for an administrator address. The
// response is identical whether or not the address is allow-listed so
// the endpoint cannot be used to probe for valid administrator emails.
func (h *AuthHandler) RequestCode(c echo.Context) error {
	var req requestCodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	if h.Cfg.IsAdminEmail(email) {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		ttl := time.Duration(h.Cfg.AdminCodeTTLMin) * time.Minute
		code, err := h.Codes.Issue(ctx, verification.AdminSubject(email), ttl)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
		}
		msg := notifier.Message{
			Kind:    notifier.KindAdminLogin,
			To:      email,
			Subject: "Your login code",
			Body:    "Your administrator login code is " + code + ". It expires in " + ttl.String() + ".",
		}
		if err := h.Notify.Send(ctx, msg); err != nil {
			h.Log.Warn("admin login code dispatch failed", zap.String("email", email), zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"sent": true})
}

// Login: exchange a valid code for a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
	}
	if !h.Cfg.IsAdminEmail(email) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Codes.Check(ctx, verification.AdminSubject(email), code); err != nil {
		if err == verification.ErrCodeInvalid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, "ADMIN", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":   access.Token,
		"expires": access.Exp,
		"email":   email,
	})
}
