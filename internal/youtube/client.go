package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubeup/internal/upload"
)

var insertParts = []string{"snippet", "status"}

var (
	_ upload.VideoService       = (*Client)(nil)
	_ upload.CredentialProvider = (*Provider)(nil)
)

type HTTPClientSource interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

type HTTPClientSourceFunc func(ctx context.Context) (*http.Client, error)

func (f HTTPClientSourceFunc) HTTPClient(ctx context.Context) (*http.Client, error) {
	return f(ctx)
}

// Provider builds a Data API client from an authenticated HTTP client.
type Provider struct {
	source HTTPClientSource
	opts   []option.ClientOption
}

func NewProvider(source HTTPClientSource, opts ...option.ClientOption) *Provider {
	return &Provider{source: source, opts: opts}
}

func (p *Provider) VideoService(ctx context.Context) (upload.VideoService, error) {
	httpClient, err := p.source.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, p.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return NewClient(svc), nil
}

type Client struct {
	svc *youtube.Service
}

func NewClient(svc *youtube.Service) *Client {
	return &Client{svc: svc}
}

// InsertVideo sends the metadata and media in a single multipart request.
// Errors from the API are returned unwrapped.
func (c *Client) InsertVideo(ctx context.Context, payload upload.Payload, media io.Reader) (string, error) {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       payload.Snippet.Title,
			Description: payload.Snippet.Description,
			Tags:        payload.Snippet.Tags,
			CategoryId:  payload.Snippet.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: payload.Status.PrivacyStatus,
		},
	}

	mediaOpts := []googleapi.MediaOption{googleapi.ChunkSize(0)}
	if payload.ContentType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(payload.ContentType))
	}

	resp, err := c.svc.Videos.Insert(insertParts, video).
		Media(media, mediaOpts...).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Id == "" {
		return "", errors.New("upload response did not include a video id")
	}

	return resp.Id, nil
}
