package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/model"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleProvider struct {
	conf *oauth2.Config
}

func newGoogle(p config.OAuthProvider) *googleProvider {
	return &googleProvider{conf: &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.CallbackURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (g *googleProvider) Name() string { return "google" }

func (g *googleProvider) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

func (g *googleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	client, err := clientFor(ctx, g.conf, code)
	if err != nil {
		return Profile{}, err
	}

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := fetchJSON(ctx, client, googleUserInfoURL, &info); err != nil {
		return Profile{}, err
	}
	if info.Email == "" {
		return Profile{}, fmt.Errorf("google profile has no email")
	}

	return Profile{
		Email:      info.Email,
		FirstName:  info.GivenName,
		LastName:   info.FamilyName,
		Avatar:     info.Picture,
		Provider:   model.ProviderGoogle,
		ProviderID: info.ID,
	}, nil
}
