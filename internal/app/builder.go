package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"tubeup/internal/metadata"
	"tubeup/internal/storage"
	"tubeup/internal/upload"
	"tubeup/pkg/config"
	"tubeup/pkg/prompts"
)

type BuildOptions struct {
	ApplicationDefault bool
	SuggestTags        bool
}

type BuildResult struct {
	Service *Service
	closers []func() error
}

func (r *BuildResult) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*BuildResult, error) {
	result := &BuildResult{}

	var remote storage.Source
	if cfg.GCS.Enabled {
		gcs, err := storage.NewGCSStorage(ctx)
		if err != nil {
			return nil, err
		}
		remote = gcs
		result.closers = append(result.closers, gcs.Close)
	}
	files := storage.NewRouter(storage.NewLocalStorage(), remote)

	credentials := buildCredentials(cfg, opts)

	var suggester TagSuggester
	if opts.SuggestTags {
		var err error
		suggester, err = buildSuggester(cfg)
		if err != nil {
			_ = result.Close()
			return nil, err
		}
	}

	result.Service = NewService(ServiceOptions{
		Config:    cfg,
		Runner:    upload.New(files, credentials),
		Suggester: suggester,
	})
	return result, nil
}

func buildSuggester(cfg *config.Config) (TagSuggester, error) {
	if cfg.GroqAPIKey == "" {
		slog.Warn("GROQ_API_KEY not set, tag suggestion disabled")
		return nil, nil
	}

	p, err := prompts.Load()
	if errors.Is(err, fs.ErrNotExist) {
		p = prompts.Default()
	} else if err != nil {
		return nil, err
	}

	suggester, err := metadata.NewSuggester(cfg.GroqAPIKey, cfg.Groq.Model, p)
	if err != nil {
		return nil, err
	}
	return suggester, nil
}
