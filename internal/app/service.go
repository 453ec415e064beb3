package app

import (
	"context"
	"log/slog"

	"tubeup/internal/upload"
	"tubeup/pkg/config"
)

type Runner interface {
	Validate(ctx context.Context, req upload.Request) error
	Run(ctx context.Context, req upload.Request) upload.State
}

type TagSuggester interface {
	SuggestTags(ctx context.Context, title, description string, maxTags int) ([]string, error)
}

type Service struct {
	cfg       *config.Config
	runner    Runner
	suggester TagSuggester
}

type ServiceOptions struct {
	Config    *config.Config
	Runner    Runner
	Suggester TagSuggester
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		runner:    opts.Runner,
		suggester: opts.Suggester,
	}
}

// UploadInput is what the CLI collects. Empty fields fall back to config.
type UploadInput struct {
	FilePath    string
	Title       string
	Description string
	Category    string
	Keywords    []string
	Privacy     string
	SuggestTags bool
}

// Upload runs the pipeline once. Tags are only suggested for a request that
// already passes validation, so invalid input never reaches Groq.
func (s *Service) Upload(ctx context.Context, in UploadInput) upload.State {
	keywords := in.Keywords
	if len(keywords) == 0 {
		keywords = s.cfg.YouTube.DefaultTags
	}
	req := s.buildRequest(in, keywords)

	if s.shouldSuggest(in) {
		if err := s.runner.Validate(ctx, req); err != nil {
			slog.Debug("Skipping tag suggestion for invalid request", "error", err)
		} else if tags := s.suggestTags(ctx, in); len(tags) > 0 {
			req = s.buildRequest(in, tags)
		}
	}

	return s.runner.Run(ctx, req)
}

func (s *Service) buildRequest(in UploadInput, keywords []string) upload.Request {
	category := in.Category
	if category == "" {
		category = s.cfg.YouTube.Category
	}

	privacy := in.Privacy
	if privacy == "" {
		privacy = s.cfg.YouTube.PrivacyStatus
	}

	return upload.NewRequest(in.FilePath, in.Title, in.Description,
		upload.WithCategory(category),
		upload.WithPrivacy(privacy),
		upload.WithKeywords(keywords...),
	)
}

func (s *Service) shouldSuggest(in UploadInput) bool {
	return in.SuggestTags && s.suggester != nil && len(in.Keywords) == 0
}

func (s *Service) suggestTags(ctx context.Context, in UploadInput) []string {
	tags, err := s.suggester.SuggestTags(ctx, in.Title, in.Description, s.cfg.Groq.MaxTags)
	if err != nil {
		slog.Warn("Tag suggestion failed, using default tags", "error", err)
		return nil
	}
	if len(tags) > 0 {
		slog.Info("Using suggested tags", "tags", tags)
	}
	return tags
}
