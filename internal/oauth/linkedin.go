package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/model"
)

// LinkedIn's OpenID Connect userinfo endpoint; requires the openid,
// profile and email scopes.
const linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"

type linkedinProvider struct {
	conf *oauth2.Config
}

func newLinkedIn(p config.OAuthProvider) *linkedinProvider {
	return &linkedinProvider{conf: &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.CallbackURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     linkedin.Endpoint,
	}}
}

func (l *linkedinProvider) Name() string { return "linkedin" }

func (l *linkedinProvider) AuthCodeURL(state string) string {
	return l.conf.AuthCodeURL(state)
}

func (l *linkedinProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	client, err := clientFor(ctx, l.conf, code)
	if err != nil {
		return Profile{}, err
	}

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := fetchJSON(ctx, client, linkedinUserInfoURL, &info); err != nil {
		return Profile{}, err
	}
	if info.Email == "" {
		return Profile{}, fmt.Errorf("linkedin profile has no email")
	}

	return Profile{
		Email:      info.Email,
		FirstName:  info.GivenName,
		LastName:   info.FamilyName,
		Avatar:     info.Picture,
		Provider:   model.ProviderLinkedIn,
		ProviderID: info.Sub,
	}, nil
}
