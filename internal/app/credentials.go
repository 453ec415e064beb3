package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"tubeup/internal/upload"
	"tubeup/internal/youtube"
	"tubeup/pkg/config"
)

var errNoClientID = errors.New("YOUTUBE_CLIENT_ID is not set (run tubeup setup or pass --adc)")

// buildCredentials never fails. Missing or unreadable OAuth settings are
// reported when the prepare stage asks for a client, after validation.
func buildCredentials(cfg *config.Config, opts BuildOptions) upload.CredentialProvider {
	switch {
	case opts.ApplicationDefault || cfg.YouTube.ApplicationDefault:
		slog.Debug("Using application default credentials")
		return youtube.NewProvider(youtube.ApplicationDefault{})
	case cfg.YouTubeClientID == "":
		return youtube.NewProvider(unavailable(errNoClientID))
	case cfg.YouTubeClientSecret != "":
		return youtube.NewProvider(youtube.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath))
	default:
		return youtube.NewProvider(&deferredAuth{cfg: cfg})
	}
}

func unavailable(err error) youtube.HTTPClientSource {
	return youtube.HTTPClientSourceFunc(func(context.Context) (*http.Client, error) {
		return nil, err
	})
}

// deferredAuth resolves the client secret on first use. A failed lookup is
// retried on the next call.
type deferredAuth struct {
	cfg *config.Config

	mu   sync.Mutex
	auth *youtube.Auth
}

func (d *deferredAuth) HTTPClient(ctx context.Context) (*http.Client, error) {
	auth, err := d.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return auth.HTTPClient(ctx)
}

func (d *deferredAuth) resolve(ctx context.Context) (*youtube.Auth, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.auth != nil {
		return d.auth, nil
	}

	secret, err := config.ClientSecret(ctx, d.cfg)
	if err != nil {
		return nil, err
	}

	d.auth = youtube.NewAuth(d.cfg.YouTubeClientID, secret, d.cfg.YouTubeTokenPath)
	return d.auth, nil
}
