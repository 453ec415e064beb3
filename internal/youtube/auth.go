package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

const DefaultRedirectURL = "http://localhost:8085/callback"

var Scopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeScope,
}

// Auth holds an installed-app OAuth client and the token saved by the
// consent flow. It is safe for concurrent use.
type Auth struct {
	config    *oauth2.Config
	tokenPath string

	mu    sync.Mutex
	token *oauth2.Token
}

func NewAuth(clientID, clientSecret, tokenPath string) *Auth {
	return &Auth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
			RedirectURL:  DefaultRedirectURL,
		},
		tokenPath: tokenPath,
	}
}

func (a *Auth) TokenPath() string {
	return a.tokenPath
}

func (a *Auth) LoadToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadToken()
}

func (a *Auth) loadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	a.token = &token
	return nil
}

func (a *Auth) SaveToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveToken()
}

func (a *Auth) saveToken() error {
	data, err := json.MarshalIndent(a.token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

func (a *Auth) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (a *Auth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
	return a.saveToken()
}

// currentToken returns the cached token, reading the token file on first use.
func (a *Auth) currentToken() (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil {
		if err := a.loadToken(); err != nil {
			return nil, err
		}
	}
	return a.token, nil
}

func (a *Auth) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.currentToken()
	if err != nil {
		return nil, err
	}

	return a.config.Client(ctx, token), nil
}

func (a *Auth) IsAuthenticated() bool {
	token, err := a.currentToken()
	return err == nil && token.Valid()
}

// ApplicationDefault authenticates with Google Application Default
// Credentials.
type ApplicationDefault struct{}

func (ApplicationDefault) HTTPClient(ctx context.Context) (*http.Client, error) {
	client, err := google.DefaultClient(ctx, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to find default credentials: %w", err)
	}
	return client, nil
}
