package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"tubeup/internal/youtube"
	"tubeup/pkg/config"
)

const (
	callbackAddr = "localhost:8085"
	authTimeout  = 5 * time.Minute
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with YouTube",
	Long:  `Authenticate with YouTube using the OAuth client from .env`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authenticate with YouTube (OAuth)",
	Long:  `Complete the YouTube OAuth flow and save the token file.`,
	RunE:  runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check credential status",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(infoStyle.Render("\nCredential status:\n"))

	switch {
	case cfg.YouTube.ApplicationDefault:
		fmt.Println(infoStyle.Render("○ YouTube: using application default credentials"))
	case cfg.YouTubeClientID == "":
		fmt.Println(errorStyle.Render("✗ YouTube: missing YOUTUBE_CLIENT_ID"))
	default:
		printYouTubeStatus(cmd.Context(), cfg)
	}

	if cfg.GroqAPIKey != "" {
		fmt.Println(successStyle.Render("✓ Groq: API key configured"))
	} else {
		fmt.Println(infoStyle.Render("○ Groq: not configured (optional, used by --suggest-tags)"))
	}

	if cfg.GCS.Enabled {
		fmt.Println(successStyle.Render("✓ Cloud Storage: gs:// paths enabled"))
	} else {
		fmt.Println(infoStyle.Render("○ Cloud Storage: disabled (optional)"))
	}

	fmt.Println()
	return nil
}

func printYouTubeStatus(ctx context.Context, cfg *config.Config) {
	secret, err := config.ClientSecret(ctx, cfg)
	if err != nil {
		fmt.Println(errorStyle.Render("✗ YouTube: " + err.Error()))
		return
	}

	auth := youtube.NewAuth(cfg.YouTubeClientID, secret, cfg.YouTubeTokenPath)
	switch {
	case auth.IsAuthenticated():
		fmt.Println(successStyle.Render("✓ YouTube: authenticated"))
	case fileExists(cfg.YouTubeTokenPath):
		fmt.Println(warnStyle.Render("○ YouTube: token expired, it is refreshed on the next upload"))
	default:
		fmt.Println(errorStyle.Render("✗ YouTube: credentials set, but not authenticated"))
		fmt.Println(infoStyle.Render("  Run: tubeup auth youtube"))
	}
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.YouTubeClientID == "" {
		return errors.New("YOUTUBE_CLIENT_ID must be set in .env")
	}

	secret, err := config.ClientSecret(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	auth := youtube.NewAuth(cfg.YouTubeClientID, secret, cfg.YouTubeTokenPath)
	return runYouTubeAuth(cmd.Context(), auth)
}

func runYouTubeAuth(ctx context.Context, auth *youtube.Auth) error {
	state := uuid.NewString()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           callbackHandler(state, codeChan, errChan),
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errChan, err)
		}
	}()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	authURL := auth.AuthURL(state)
	fmt.Println(infoStyle.Render("\nOpening browser for YouTube authentication..."))
	fmt.Println(infoStyle.Render("If browser doesn't open, visit:\n" + authURL))

	_ = browser.OpenURL(authURL)

	fmt.Println(infoStyle.Render("\nWaiting for authentication..."))

	select {
	case code := <-codeChan:
		if err := auth.Exchange(ctx, code); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ YouTube authentication complete"))
		fmt.Println(successStyle.Render("  Token saved to: " + auth.TokenPath()))
		return nil

	case err := <-errChan:
		return err

	case <-ctx.Done():
		return ctx.Err()

	case <-time.After(authTimeout):
		return errors.New("authentication timed out")
	}
}

func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			sendErr(errChan, fmt.Errorf("no code in callback: %s", query.Get("error")))
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})
}

func sendErr(errChan chan<- error, err error) {
	select {
	case errChan <- err:
	default:
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
