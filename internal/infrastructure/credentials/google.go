package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GmailReadonlyScope grants read access to message metadata.
const GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

type clientSecrets struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
}

// GoogleConfigFromJSON parses a downloaded OAuth client file ("installed" or "web" app).
func GoogleConfigFromJSON(raw []byte, scopes ...string) (*oauth2.Config, error) {
	var file struct {
		Installed *clientSecrets `json:"installed"`
		Web       *clientSecrets `json:"web"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode client secrets: %w", err)
	}
	secrets := file.Installed
	if secrets == nil {
		secrets = file.Web
	}
	if secrets == nil || secrets.ClientID == "" {
		return nil, errors.New("client secrets: missing installed or web client")
	}

	endpoint := endpoints.Google
	if secrets.AuthURI != "" {
		endpoint.AuthURL = secrets.AuthURI
	}
	if secrets.TokenURI != "" {
		endpoint.TokenURL = secrets.TokenURI
	}

	cfg := &oauth2.Config{
		ClientID:     secrets.ClientID,
		ClientSecret: secrets.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
	if len(secrets.RedirectURIs) > 0 {
		cfg.RedirectURL = secrets.RedirectURIs[0]
	}
	return cfg, nil
}
