package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tubeup/internal/storage"
)

var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

type insertCall struct {
	payload Payload
	media   []byte
}

type fakeVideoService struct {
	ids   []string
	err   error
	calls []insertCall
}

func (f *fakeVideoService) InsertVideo(_ context.Context, payload Payload, media io.Reader) (string, error) {
	data, _ := io.ReadAll(media)
	f.calls = append(f.calls, insertCall{payload: payload, media: data})
	if f.err != nil {
		return "", f.err
	}
	if len(f.ids) == 0 {
		return fmt.Sprintf("video-%d", len(f.calls)), nil
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

type fakeCredentials struct {
	service VideoService
	err     error
	calls   int
}

func (f *fakeCredentials) VideoService(_ context.Context) (VideoService, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.service, nil
}

func writeVideo(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	copy(data, mp4Header)
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestPipeline(service *fakeVideoService, creds *fakeCredentials) *Pipeline {
	if creds == nil {
		creds = &fakeCredentials{service: service}
	}
	p := New(storage.NewLocalStorage(), creds)
	p.newRunID = func() string { return "test-run" }
	return p
}

func TestRunExampleScenario(t *testing.T) {
	path := writeVideo(t, 2<<20)
	service := &fakeVideoService{ids: []string{"xyz"}}
	p := newTestPipeline(service, nil)

	req := NewRequest(path, "Demo", "A demo video",
		WithCategory("22"),
		WithKeywords("a", "b"),
		WithPrivacy("private"),
	)
	got := p.Run(context.Background(), req)

	if got.Status != StatusCompleted {
		t.Fatalf("Status = %q, want %q (error: %s)", got.Status, StatusCompleted, got.ErrorMessage())
	}
	if got.VideoID != "xyz" {
		t.Errorf("VideoID = %q, want xyz", got.VideoID)
	}
	if got.ErrorMessage() != "" {
		t.Errorf("ErrorMessage() = %q, want empty", got.ErrorMessage())
	}
	if got.URL() != "https://youtube.com/watch?v=xyz" {
		t.Errorf("URL() = %q", got.URL())
	}
	if got.RunID != "test-run" {
		t.Errorf("RunID = %q, want test-run", got.RunID)
	}

	if len(service.calls) != 1 {
		t.Fatalf("InsertVideo called %d times, want 1", len(service.calls))
	}
	call := service.calls[0]
	want := Snippet{Title: "Demo", Description: "A demo video", Tags: []string{"a", "b"}, CategoryID: "22"}
	if call.payload.Snippet.Title != want.Title ||
		call.payload.Snippet.Description != want.Description ||
		!slices.Equal(call.payload.Snippet.Tags, want.Tags) ||
		call.payload.Snippet.CategoryID != want.CategoryID {
		t.Errorf("Snippet = %+v, want %+v", call.payload.Snippet, want)
	}
	if call.payload.Status.PrivacyStatus != "private" {
		t.Errorf("PrivacyStatus = %q, want private", call.payload.Status.PrivacyStatus)
	}
	if call.payload.ContentType != "video/mp4" {
		t.Errorf("ContentType = %q, want video/mp4", call.payload.ContentType)
	}
	if len(call.media) != 2<<20 || !bytes.HasPrefix(call.media, mp4Header) {
		t.Errorf("media length = %d, want the whole file", len(call.media))
	}
}

func TestRunMissingFile(t *testing.T) {
	service := &fakeVideoService{}
	creds := &fakeCredentials{service: service}
	p := newTestPipeline(service, creds)

	missing := filepath.Join(t.TempDir(), "missing.mp4")
	got := p.Run(context.Background(), NewRequest(missing, "Demo", "A demo video"))

	if got.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", got.Status)
	}
	if !strings.Contains(got.ErrorMessage(), "not found") || !strings.Contains(got.ErrorMessage(), missing) {
		t.Errorf("ErrorMessage() = %q, want mention of missing file", got.ErrorMessage())
	}
	if !errors.Is(got.Err, ErrValidation) {
		t.Errorf("Err kind = %q, want validation", got.Err.Kind)
	}
	if got.Err.Field != "file" {
		t.Errorf("Err.Field = %q, want file", got.Err.Field)
	}
	if creds.calls != 0 || len(service.calls) != 0 {
		t.Errorf("credential calls = %d, insert calls = %d, want none", creds.calls, len(service.calls))
	}
}

func TestRunDirectoryPath(t *testing.T) {
	service := &fakeVideoService{}
	creds := &fakeCredentials{service: service}
	p := newTestPipeline(service, creds)

	got := p.Run(context.Background(), NewRequest(t.TempDir(), "Demo", "A demo video"))

	if got.Status != StatusFailed || !errors.Is(got.Err, ErrValidation) {
		t.Fatalf("Status = %q, Err = %v, want validation failure", got.Status, got.Err)
	}
	if creds.calls != 0 {
		t.Error("credentials requested for a directory path")
	}
}

func TestRunMetadataValidation(t *testing.T) {
	path := writeVideo(t, 1024)

	tests := []struct {
		name        string
		title       string
		description string
		wantField   string
	}{
		{name: "emptyTitle", title: "", description: "desc", wantField: "title"},
		{name: "longTitle", title: strings.Repeat("t", 101), description: "desc", wantField: "title"},
		{name: "emptyDescription", title: "Demo", description: "", wantField: "description"},
		{name: "longDescription", title: "Demo", description: strings.Repeat("d", 5001), wantField: "description"},
		{name: "maxTitle", title: strings.Repeat("t", 100), description: "desc"},
		{name: "maxDescription", title: "Demo", description: strings.Repeat("d", 5000)},
		{name: "multibyteTitle", title: strings.Repeat("é", 100), description: "desc"},
		{name: "longMultibyteTitle", title: strings.Repeat("é", 101), description: "desc", wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeVideoService{}
			creds := &fakeCredentials{service: service}
			p := newTestPipeline(service, creds)

			got := p.Run(context.Background(), NewRequest(path, tt.title, tt.description))

			if tt.wantField == "" {
				if got.Status != StatusCompleted {
					t.Errorf("Status = %q, want completed (error: %s)", got.Status, got.ErrorMessage())
				}
				return
			}

			if got.Status != StatusFailed {
				t.Fatalf("Status = %q, want failed", got.Status)
			}
			if got.Err.Field != tt.wantField || got.Err.Kind != KindValidation {
				t.Errorf("Err = {%s %s}, want {%s %s}", got.Err.Kind, got.Err.Field, KindValidation, tt.wantField)
			}
			if creds.calls != 0 || len(service.calls) != 0 {
				t.Errorf("credential calls = %d, insert calls = %d, want none", creds.calls, len(service.calls))
			}
		})
	}
}

func TestRunCredentialFailure(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{}
	creds := &fakeCredentials{err: errors.New("failed to read token file: no such file")}
	p := newTestPipeline(service, creds)

	got := p.Run(context.Background(), NewRequest(path, "Demo", "A demo video"))

	if got.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", got.Status)
	}
	if !errors.Is(got.Err, ErrCredential) {
		t.Errorf("Err kind = %q, want credential", got.Err.Kind)
	}
	if got.ErrorMessage() != "failed to read token file: no such file" {
		t.Errorf("ErrorMessage() = %q", got.ErrorMessage())
	}
	if len(service.calls) != 0 {
		t.Error("InsertVideo called after credential failure")
	}
}

func TestRunRemoteFailure(t *testing.T) {
	path := writeVideo(t, 1024)
	remoteErr := errors.New("googleapi: Error 403: quota exceeded")
	service := &fakeVideoService{err: remoteErr}
	p := newTestPipeline(service, nil)

	got := p.Run(context.Background(), NewRequest(path, "Demo", "A demo video"))

	if got.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", got.Status)
	}
	if got.ErrorMessage() != remoteErr.Error() {
		t.Errorf("ErrorMessage() = %q, want %q", got.ErrorMessage(), remoteErr.Error())
	}
	if !errors.Is(got.Err, ErrTransport) || !errors.Is(got.Err, remoteErr) {
		t.Errorf("Err = %#v, want transport error wrapping the remote error", got.Err)
	}
	if got.VideoID != "" {
		t.Errorf("VideoID = %q, want empty", got.VideoID)
	}
	if len(service.calls) != 1 {
		t.Errorf("InsertVideo called %d times, want exactly 1", len(service.calls))
	}
}

func TestRunEmptyVideoID(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{ids: []string{""}}
	p := newTestPipeline(service, nil)

	got := p.Run(context.Background(), NewRequest(path, "Demo", "A demo video"))

	if got.Status != StatusFailed || !errors.Is(got.Err, ErrTransport) {
		t.Fatalf("Status = %q, Err = %v, want transport failure", got.Status, got.Err)
	}
}

func TestRunReturnsRemoteID(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{ids: []string{"abc123"}}
	p := newTestPipeline(service, nil)

	got := p.Run(context.Background(), NewRequest(path, "Demo", "A demo video"))

	if got.Status != StatusCompleted || got.VideoID != "abc123" {
		t.Errorf("got {%s %s}, want {completed abc123}", got.Status, got.VideoID)
	}
}

func TestRunIsNotIdempotent(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{}
	p := New(storage.NewLocalStorage(), &fakeCredentials{service: service})

	req := NewRequest(path, "Demo", "A demo video")
	first := p.Run(context.Background(), req)
	second := p.Run(context.Background(), req)

	if len(service.calls) != 2 {
		t.Fatalf("InsertVideo called %d times, want 2", len(service.calls))
	}
	if first.VideoID == second.VideoID {
		t.Errorf("both runs returned %q, want distinct ids", first.VideoID)
	}
	if first.RunID == second.RunID {
		t.Errorf("both runs share run id %q", first.RunID)
	}
}

func TestStagesDoNotMutateInput(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{}
	p := newTestPipeline(service, nil)

	in := newState("run", NewRequest(path, "Demo", "desc", WithKeywords("a", "b")))

	validated := p.validate(context.Background(), in)
	if in.Status != StatusPending {
		t.Errorf("validate mutated input status to %q", in.Status)
	}
	if validated.Status != StatusValidated {
		t.Fatalf("validate status = %q, want validated", validated.Status)
	}

	prepared := p.prepare(context.Background(), validated)
	if validated.Status != StatusValidated || validated.payload != nil || validated.service != nil {
		t.Error("prepare mutated its input")
	}
	if prepared.Status != StatusPrepared || prepared.payload == nil || prepared.service == nil {
		t.Fatalf("prepare status = %q, want prepared with client and payload", prepared.Status)
	}

	prepared.payload.Snippet.Tags[0] = "changed"
	if in.Keywords[0] != "a" {
		t.Error("payload tags alias the request keywords")
	}
}

func TestStageGuards(t *testing.T) {
	path := writeVideo(t, 1024)
	service := &fakeVideoService{}
	creds := &fakeCredentials{service: service}
	p := newTestPipeline(service, creds)

	pending := newState("run", NewRequest(path, "Demo", "desc"))
	if got := p.prepare(context.Background(), pending); got.Status != StatusPending || creds.calls != 0 {
		t.Errorf("prepare on pending state = %q, credential calls = %d", got.Status, creds.calls)
	}

	validated := p.validate(context.Background(), pending)
	if got := p.send(context.Background(), validated); got.Status != StatusValidated || len(service.calls) != 0 {
		t.Errorf("send before prepare = %q, insert calls = %d", got.Status, len(service.calls))
	}

	failed := pending.fail(validationError(stageValidate, "title", errors.New("title is required")))
	if got := p.prepare(context.Background(), failed); got.Status != StatusFailed {
		t.Errorf("prepare on failed state = %q", got.Status)
	}
	if got := p.send(context.Background(), failed); got.Status != StatusFailed {
		t.Errorf("send on failed state = %q", got.Status)
	}
	if creds.calls != 0 || len(service.calls) != 0 {
		t.Error("guarded stage performed its effect")
	}
}

func TestNewRequestDefaults(t *testing.T) {
	req := NewRequest("video.mp4", "Demo", "desc")

	if req.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", req.Category, DefaultCategory)
	}
	if req.Privacy != DefaultPrivacy {
		t.Errorf("Privacy = %q, want %q", req.Privacy, DefaultPrivacy)
	}
	if req.Keywords == nil || len(req.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty", req.Keywords)
	}

	custom := NewRequest("video.mp4", "Demo", "desc", WithCategory("10"), WithPrivacy("unlisted"), WithKeywords("x"))
	if custom.Category != "10" || custom.Privacy != "unlisted" || !slices.Equal(custom.Keywords, []string{"x"}) {
		t.Errorf("NewRequest() with options = %+v", custom)
	}
}

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want error
		not  []error
	}{
		{name: "validation", err: validationError(stageValidate, "title", errors.New("x")), want: ErrValidation, not: []error{ErrCredential, ErrTransport}},
		{name: "credential", err: credentialError(stagePrepare, errors.New("x")), want: ErrCredential, not: []error{ErrValidation, ErrTransport}},
		{name: "transport", err: transportError(stageSend, errors.New("x")), want: ErrTransport, not: []error{ErrValidation, ErrCredential}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("errors.Is(%s, %v) = false", tt.err.Kind, tt.want)
			}
			for _, other := range tt.not {
				if errors.Is(tt.err, other) {
					t.Errorf("errors.Is(%s, %v) = true", tt.err.Kind, other)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	path := writeVideo(t, 1024)
	missing := filepath.Join(t.TempDir(), "missing.mp4")

	tests := []struct {
		name      string
		req       Request
		wantField string
	}{
		{name: "valid", req: NewRequest(path, "Demo", "A demo video")},
		{name: "missingFile", req: NewRequest(missing, "Demo", "A demo video"), wantField: "file"},
		{name: "emptyTitle", req: NewRequest(path, "", "A demo video"), wantField: "title"},
		{name: "longDescription", req: NewRequest(path, "Demo", strings.Repeat("d", MaxDescriptionLength+1)), wantField: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeVideoService{}
			creds := &fakeCredentials{service: service}
			p := newTestPipeline(service, creds)

			err := p.Validate(context.Background(), tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
			} else {
				var uploadErr *Error
				if !errors.As(err, &uploadErr) {
					t.Fatalf("Validate() error = %v, want *Error", err)
				}
				if uploadErr.Kind != KindValidation || uploadErr.Field != tt.wantField {
					t.Errorf("Validate() = %s/%s, want VALIDATION/%s", uploadErr.Kind, uploadErr.Field, tt.wantField)
				}
			}

			if creds.calls != 0 || len(service.calls) != 0 {
				t.Errorf("credential calls = %d, insert calls = %d, want none", creds.calls, len(service.calls))
			}
		})
	}
}
