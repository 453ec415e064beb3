// Package upload runs a single video upload through three ordered stages:
// validate, prepare and upload. Failures are recorded on the returned State
// rather than returned as errors.
package upload

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tubeup/internal/storage"
)

type stage struct {
	name string
	run  func(context.Context, State) State
}

type Pipeline struct {
	files       storage.Source
	credentials CredentialProvider
	newRunID    func() string
}

func New(files storage.Source, credentials CredentialProvider) *Pipeline {
	return &Pipeline{
		files:       files,
		credentials: credentials,
		newRunID:    uuid.NewString,
	}
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: stageValidate, run: p.validate},
		{name: stagePrepare, run: p.prepare},
		{name: stageSend, run: p.send},
	}
}

// Validate runs only the validate stage against req. For local paths it makes
// no credential or network call. The returned error is an *Error.
func (p *Pipeline) Validate(ctx context.Context, req Request) error {
	state := p.validate(ctx, newState("", req))
	if state.Err != nil {
		return state.Err
	}
	return nil
}

// Run executes every stage in order and returns the final state. Stages after
// a failure see a terminal status and leave the state untouched.
func (p *Pipeline) Run(ctx context.Context, req Request) State {
	state := newState(p.newRunID(), req)
	log := slog.With("run_id", state.RunID)

	log.Info("Starting upload", "file", state.FilePath, "title", state.Title, "privacy", state.Privacy)

	for _, st := range p.stages() {
		prev := state.Status
		state = st.run(ctx, state)
		if state.Status != prev {
			log.Debug("Stage finished", "stage", st.name, "status", state.Status)
		}
	}

	if state.Status == StatusFailed {
		log.Warn("Upload failed",
			"stage", state.Err.Stage,
			"kind", state.Err.Kind,
			"error", state.Err,
		)
		return state
	}

	log.Info("Upload complete", "video_id", state.VideoID, "url", state.URL())
	return state
}
