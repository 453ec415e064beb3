package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// accessSecret is swapped out in tests.
var accessSecret = accessSecretVersion

var ErrNoClientSecret = errors.New("YOUTUBE_CLIENT_SECRET is not set and GOOGLE_CLOUD_PROJECT is not configured for Secret Manager")

// ClientSecret returns the configured YouTube client secret. When it is unset
// and a GCP project is configured, it is read from Secret Manager.
func ClientSecret(ctx context.Context, cfg *Config) (string, error) {
	if cfg.YouTubeClientSecret != "" {
		return cfg.YouTubeClientSecret, nil
	}
	if cfg.GCPProject == "" {
		return "", ErrNoClientSecret
	}

	slog.Debug("Fetching YouTube client secret", "project", cfg.GCPProject, "secret", cfg.Secrets.ClientSecretName)
	secret, err := accessSecret(ctx, cfg.GCPProject, cfg.Secrets.ClientSecretName)
	if err != nil {
		return "", fmt.Errorf("load youtube client secret: %w", err)
	}
	return secret, nil
}

func accessSecretVersion(ctx context.Context, project, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	return string(resp.GetPayload().GetData()), nil
}
