package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"tubeup/internal/storage"
)

const (
	stageValidate = "validate"
	stagePrepare  = "prepare"
	stageSend     = "upload"

	MaxTitleLength       = 100
	MaxDescriptionLength = 5000

	fallbackContentType = "application/octet-stream"
)

var errNoVideoID = errors.New("upload returned no video id")

func (p *Pipeline) validate(ctx context.Context, s State) State {
	if _, err := p.files.Stat(ctx, s.FilePath); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			err = fmt.Errorf("video file not found: %s", s.FilePath)
		case errors.Is(err, storage.ErrNotFile):
			err = fmt.Errorf("video path is not a file: %s", s.FilePath)
		}
		return s.fail(validationError(stageValidate, "file", err))
	}

	if err := checkLength("title", s.Title, MaxTitleLength); err != nil {
		return s.fail(validationError(stageValidate, "title", err))
	}

	if err := checkLength("description", s.Description, MaxDescriptionLength); err != nil {
		return s.fail(validationError(stageValidate, "description", err))
	}

	s.Status = StatusValidated
	return s
}

func checkLength(field, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%s must be at most %d characters, got %d", field, limit, n)
	}
	return nil
}

func (p *Pipeline) prepare(ctx context.Context, s State) State {
	if s.Status != StatusValidated {
		return s
	}

	service, err := p.credentials.VideoService(ctx)
	if err != nil {
		return s.fail(credentialError(stagePrepare, err))
	}
	if service == nil {
		return s.fail(credentialError(stagePrepare, errors.New("credential provider returned no client")))
	}

	payload := buildPayload(s.Request)
	payload.ContentType = p.detectContentType(ctx, s.FilePath)

	s.service = service
	s.payload = &payload
	s.Status = StatusPrepared
	return s
}

func buildPayload(req Request) Payload {
	return Payload{
		Snippet: Snippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        slices.Clone(req.Keywords),
			CategoryID:  req.Category,
		},
		Status: VideoStatus{
			PrivacyStatus: req.Privacy,
		},
	}
}

func (p *Pipeline) detectContentType(ctx context.Context, path string) string {
	r, err := p.files.Open(ctx, path)
	if err != nil {
		slog.Warn("Failed to sniff content type", "path", path, "error", err)
		return fallbackContentType
	}
	defer func() { _ = r.Close() }()

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		slog.Warn("Failed to sniff content type", "path", path, "error", err)
		return fallbackContentType
	}
	return mtype.String()
}

func (p *Pipeline) send(ctx context.Context, s State) State {
	if s.Status != StatusPrepared || s.service == nil || s.payload == nil {
		return s
	}

	media, err := p.files.Open(ctx, s.FilePath)
	if err != nil {
		return s.fail(validationError(stageSend, "file", err))
	}
	defer func() { _ = media.Close() }()

	id, err := s.service.InsertVideo(ctx, *s.payload, media)
	if err != nil {
		return s.fail(transportError(stageSend, err))
	}
	if id == "" {
		return s.fail(transportError(stageSend, errNoVideoID))
	}

	s.VideoID = id
	s.Status = StatusCompleted
	return s
}
