package upload

import "slices"

const (
	DefaultCategory = "22"
	DefaultPrivacy  = "private"
)

// Request is the caller's input. It is never modified by the pipeline.
type Request struct {
	FilePath    string
	Title       string
	Description string
	Category    string
	Keywords    []string
	Privacy     string
}

type RequestOption func(*Request)

func WithCategory(category string) RequestOption {
	return func(r *Request) {
		r.Category = category
	}
}

func WithKeywords(keywords ...string) RequestOption {
	return func(r *Request) {
		r.Keywords = keywords
	}
}

func WithPrivacy(privacy string) RequestOption {
	return func(r *Request) {
		r.Privacy = privacy
	}
}

func NewRequest(filePath, title, description string, opts ...RequestOption) Request {
	req := Request{
		FilePath:    filePath,
		Title:       title,
		Description: description,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req.withDefaults()
}

func (r Request) withDefaults() Request {
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Privacy == "" {
		r.Privacy = DefaultPrivacy
	}
	r.Keywords = slices.Clone(r.Keywords)
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	return r
}
