package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/oauth"
	"github.com/iliyamo/auth-session-service/internal/service"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler drives the federated login flow: a begin endpoint
// that redirects to the provider's consent screen and a callback
// that exchanges the code, logs the user in and hands the tokens to
// the frontend via a redirect.
type OAuthHandler struct {
	Svc         *service.AuthService
	Providers   map[string]oauth.Provider
	FrontendURL string
}

func NewOAuthHandler(svc *service.AuthService, providers map[string]oauth.Provider, frontendURL string) *OAuthHandler {
	return &OAuthHandler{Svc: svc, Providers: providers, FrontendURL: frontendURL}
}

// Begin redirects the browser to the provider's consent screen with
// a random state value pinned in a short-lived cookie.
func (h *OAuthHandler) Begin(c echo.Context) error {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	state, err := randomState()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "oauth init failed"})
	}
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, p.AuthCodeURL(state))
}

// Callback verifies the state, exchanges the authorization code for
// a normalized profile, completes the login (creating a session so
// OAuth tokens are revocable like password ones) and redirects to
// the frontend with the pair in the query string.
func (h *OAuthHandler) Callback(c echo.Context) error {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "state mismatch"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "oauth exchange failed"})
	}

	res, err := h.Svc.CompleteOAuthLogin(ctx, profile, requestContext(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "oauth login failed"})
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s&refresh=%s",
		h.FrontendURL,
		url.QueryEscape(res.Pair.AccessToken),
		url.QueryEscape(res.Pair.RefreshToken))
	return c.Redirect(http.StatusFound, redirect)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
