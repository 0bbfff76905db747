package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/model"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type githubProvider struct {
	conf *oauth2.Config
}

func newGitHub(p config.OAuthProvider) *githubProvider {
	return &githubProvider{conf: &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.CallbackURL,
		Scopes:       []string{"user:email"},
		Endpoint:     github.Endpoint,
	}}
}

func (g *githubProvider) Name() string { return "github" }

func (g *githubProvider) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

func (g *githubProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	client, err := clientFor(ctx, g.conf, code)
	if err != nil {
		return Profile{}, err
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(ctx, client, githubUserURL, &user); err != nil {
		return Profile{}, err
	}

	email := user.Email
	if email == "" {
		// The public profile email is often hidden; the user:email
		// scope lets us read the verified primary address instead.
		email, err = g.primaryEmail(ctx, client)
		if err != nil {
			return Profile{}, err
		}
	}

	first, last := splitName(user.Name, user.Login)
	return Profile{
		Email:      email,
		FirstName:  first,
		LastName:   last,
		Avatar:     user.AvatarURL,
		Provider:   model.ProviderGitHub,
		ProviderID: strconv.FormatInt(user.ID, 10),
	}, nil
}

// primaryEmail fetches the user's email list and picks the primary
// verified address.
func (g *githubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := fetchJSON(ctx, client, githubEmailsURL, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("github profile has no verified email")
}

// splitName breaks a display name into first/last, falling back to
// the login handle when the profile has no name set.
func splitName(name, fallback string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback, ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
