package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewAuth(t *testing.T) {
	auth := NewAuth("client-id", "client-secret", "/tmp/token.json")

	if auth.config.ClientID != "client-id" {
		t.Errorf("ClientID = %q, want %q", auth.config.ClientID, "client-id")
	}
	if auth.config.ClientSecret != "client-secret" {
		t.Errorf("ClientSecret = %q, want %q", auth.config.ClientSecret, "client-secret")
	}
	if auth.TokenPath() != "/tmp/token.json" {
		t.Errorf("TokenPath() = %q, want %q", auth.TokenPath(), "/tmp/token.json")
	}
	if auth.config.RedirectURL != DefaultRedirectURL {
		t.Errorf("RedirectURL = %q, want %q", auth.config.RedirectURL, DefaultRedirectURL)
	}
}

func TestAuthURL(t *testing.T) {
	auth := NewAuth("client-id", "client-secret", "/tmp/token.json")
	url := auth.AuthURL("state-123")

	for _, want := range []string{"client_id=client-id", "state=state-123", "access_type=offline", "youtube.upload"} {
		if !strings.Contains(url, want) {
			t.Errorf("AuthURL() = %q, missing %q", url, want)
		}
	}
}

func TestAuthLoadToken(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr bool
	}{
		{
			name:    "validToken",
			content: mustMarshalToken(t, &oauth2.Token{AccessToken: "test-access-token", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}),
		},
		{
			name:    "missingFile",
			wantErr: true,
		},
		{
			name:    "invalidJSON",
			content: []byte("not valid json"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenPath := filepath.Join(t.TempDir(), "token.json")
			if tt.content != nil {
				_ = os.WriteFile(tokenPath, tt.content, 0600)
			}

			auth := NewAuth("id", "secret", tokenPath)
			err := auth.LoadToken()

			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && auth.token.AccessToken != "test-access-token" {
				t.Errorf("AccessToken = %q", auth.token.AccessToken)
			}
		})
	}
}

func TestAuthSaveToken(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	auth := NewAuth("id", "secret", tokenPath)
	auth.token = &oauth2.Token{AccessToken: "save-test-token", Expiry: time.Now().Add(time.Hour)}

	if err := auth.SaveToken(); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	info, err := os.Stat(tokenPath)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	reloaded := NewAuth("id", "secret", tokenPath)
	if err := reloaded.LoadToken(); err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if reloaded.token.AccessToken != "save-test-token" {
		t.Errorf("AccessToken = %q, want save-test-token", reloaded.token.AccessToken)
	}
}

func TestAuthSaveTokenInvalidPath(t *testing.T) {
	auth := NewAuth("id", "secret", "/nonexistent/dir/token.json")
	auth.token = &oauth2.Token{AccessToken: "test"}

	if err := auth.SaveToken(); err == nil {
		t.Error("SaveToken() should return error for invalid path")
	}
}

func TestAuthIsAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
		want  bool
	}{
		{name: "noToken", want: false},
		{name: "validToken", token: &oauth2.Token{AccessToken: "valid", Expiry: time.Now().Add(time.Hour)}, want: true},
		{name: "expiredToken", token: &oauth2.Token{AccessToken: "expired", Expiry: time.Now().Add(-time.Hour)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuth("id", "secret", filepath.Join(t.TempDir(), "token.json"))
			auth.token = tt.token

			if got := auth.IsAuthenticated(); got != tt.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthHTTPClient(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")

	auth := NewAuth("id", "secret", tokenPath)
	if _, err := auth.HTTPClient(context.Background()); err == nil {
		t.Error("HTTPClient() should fail without a token")
	}

	_ = os.WriteFile(tokenPath, mustMarshalToken(t, &oauth2.Token{AccessToken: "file-token", Expiry: time.Now().Add(time.Hour)}), 0600)

	client, err := auth.HTTPClient(context.Background())
	if err != nil {
		t.Fatalf("HTTPClient() error = %v", err)
	}
	if client == nil {
		t.Error("HTTPClient() returned nil client")
	}
}

func TestAuthConcurrentVideoService(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	_ = os.WriteFile(tokenPath, mustMarshalToken(t, &oauth2.Token{AccessToken: "shared", Expiry: time.Now().Add(time.Hour)}), 0600)

	auth := NewAuth("id", "secret", tokenPath)
	provider := NewProvider(auth)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := provider.VideoService(context.Background()); err != nil {
				errs <- err
				return
			}
			if !auth.IsAuthenticated() {
				errs <- errors.New("token not valid after concurrent load")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent VideoService: %v", err)
	}
}

func TestHTTPClientSourceFunc(t *testing.T) {
	want := errors.New("YOUTUBE_CLIENT_ID is not set")
	source := HTTPClientSourceFunc(func(context.Context) (*http.Client, error) {
		return nil, want
	})

	if _, err := NewProvider(source).VideoService(context.Background()); !errors.Is(err, want) {
		t.Errorf("VideoService() error = %v, want %v", err, want)
	}
}

func mustMarshalToken(t *testing.T, token *oauth2.Token) []byte {
	t.Helper()
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
