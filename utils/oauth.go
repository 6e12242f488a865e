package utils

import (
	"courseforge/config"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OAuthIdentity is the normalized identity returned by a provider's
// userinfo endpoint. Only the data contract is handled here; the
// authorization-code handshake happens client-side.
type OAuthIdentity struct {
	UID   string
	Name  string
	Email string
}

// FetchOAuthIdentity verifies a provider access token by fetching the
// provider's userinfo endpoint and normalizing the response.
func FetchOAuthIdentity(provider, accessToken string) (*OAuthIdentity, error) {
	var userInfoURL string
	switch strings.ToUpper(provider) {
	case "GITHUB":
		userInfoURL = config.AppConfig.GithubUserInfoURL
	case "GOOGLE":
		userInfoURL = config.AppConfig.GoogleUserInfoURL
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+accessToken).
		SetHeader("Accept", "application/json").
		Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("userinfo request rejected: %s", resp.Status())
	}

	switch strings.ToUpper(provider) {
	case "GITHUB":
		var payload struct {
			ID    int64  `json:"id"`
			Login string `json:"login"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return nil, fmt.Errorf("invalid userinfo response: %v", err)
		}
		name := payload.Name
		if name == "" {
			name = payload.Login
		}
		return &OAuthIdentity{
			UID:   strconv.FormatInt(payload.ID, 10),
			Name:  name,
			Email: payload.Email,
		}, nil
	default: // GOOGLE
		var payload struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return nil, fmt.Errorf("invalid userinfo response: %v", err)
		}
		return &OAuthIdentity{
			UID:   payload.ID,
			Name:  payload.Name,
			Email: payload.Email,
		}, nil
	}
}
