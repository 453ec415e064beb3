package upload

import (
	"context"
	"io"
)

type Snippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

type VideoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

// Payload is the create-video request body plus the media type of the file
// that accompanies it.
type Payload struct {
	Snippet     Snippet     `json:"snippet"`
	Status      VideoStatus `json:"status"`
	ContentType string      `json:"-"`
}

// VideoService performs the remote create-video call and returns the
// identifier assigned by the platform.
type VideoService interface {
	InsertVideo(ctx context.Context, payload Payload, media io.Reader) (string, error)
}

// CredentialProvider hands out an authenticated VideoService.
type CredentialProvider interface {
	VideoService(ctx context.Context) (VideoService, error)
}

type CredentialProviderFunc func(ctx context.Context) (VideoService, error)

func (f CredentialProviderFunc) VideoService(ctx context.Context) (VideoService, error) {
	return f(ctx)
}
