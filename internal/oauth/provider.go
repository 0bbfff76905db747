// Package oauth implements federated login against Google, GitHub
// and LinkedIn.  Each provider exchanges an authorization code for
// the provider's user record and normalizes it into Profile, so the
// auth service stays provider-agnostic.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/iliyamo/auth-session-service/internal/config"
)

// Profile is the canonical shape every provider normalizes to.
type Profile struct {
	Email      string
	FirstName  string
	LastName   string
	Avatar     string
	Provider   string
	ProviderID string
}

// Provider is one federated login integration.
type Provider interface {
	// Name returns the lower-case route segment for the provider.
	Name() string
	// AuthCodeURL builds the provider consent-screen URL for a state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for a normalized profile.
	Exchange(ctx context.Context, code string) (Profile, error)
}

// NewProviders builds the enabled providers keyed by name.  A
// provider with no configured client id is omitted.
func NewProviders(cfg config.OAuthConfig) map[string]Provider {
	out := make(map[string]Provider)
	if cfg.Google.ClientID != "" {
		out["google"] = newGoogle(cfg.Google)
	}
	if cfg.GitHub.ClientID != "" {
		out["github"] = newGitHub(cfg.GitHub)
	}
	if cfg.LinkedIn.ClientID != "" {
		out["linkedin"] = newLinkedIn(cfg.LinkedIn)
	}
	return out
}

// fetchJSON performs an authorized GET against a provider API and
// decodes the JSON response into dst.
func fetchJSON(ctx context.Context, client *http.Client, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider api %s: status %d: %s", url, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// clientFor exchanges the code and returns an HTTP client carrying
// the provider access token.
func clientFor(ctx context.Context, conf *oauth2.Config, code string) (*http.Client, error) {
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	return conf.Client(ctx, tok), nil
}
