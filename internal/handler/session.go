package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/middleware"
	"github.com/iliyamo/auth-session-service/internal/model"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/service"
)

// SessionHandler exposes multi-device session management for the
// authenticated user: enumeration, targeted termination and bulk
// termination.  All routes require a valid access token.
type SessionHandler struct {
	Svc *service.AuthService
}

func NewSessionHandler(svc *service.AuthService) *SessionHandler {
	return &SessionHandler{Svc: svc}
}

type sessionPart struct {
	ID         uint64    `json:"id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	DeviceID   *string   `json:"device_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toSessionParts(sessions []model.Session) []sessionPart {
	out := make([]sessionPart, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionPart{
			ID:         s.ID,
			IPAddress:  s.IPAddress,
			UserAgent:  s.UserAgent,
			DeviceID:   s.DeviceID,
			CreatedAt:  s.CreatedAt,
			LastUsedAt: s.LastUsedAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}
	return out
}

// List returns the caller's active sessions, most recently used
// device first.
func (h *SessionHandler) List(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	sessions, err := h.Svc.ListSessions(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list sessions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": toSessionParts(sessions)})
}

// Terminate deactivates one of the caller's sessions and invalidates
// every refresh token issued under it.
func (h *SessionHandler) Terminate(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sid, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sid == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Svc.TerminateSession(ctx, sid, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "terminate failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// TerminateAll deactivates every session the caller owns, logging
// the user out of all devices.
func (h *SessionHandler) TerminateAll(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Svc.TerminateAllSessions(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "terminate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
