package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

const defaultTagsSystem = "You are a YouTube metadata assistant. Reply with a JSON object of the form {\"tags\": [\"...\"]} and nothing else."

const defaultTagsSuggest = `Suggest at most {{.MaxTags}} short search tags for this video.
Title: {{.Title}}
Description: {{.Description}}`

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Tags   TagPrompts    `yaml:"tags"`
}

type SystemPrompts struct {
	Tags string `yaml:"tags"`
}

type TagPrompts struct {
	Suggest string `yaml:"suggest"`
}

type TagParams struct {
	Title       string
	Description string
	MaxTags     int
}

func Default() *Prompts {
	return &Prompts{
		System: SystemPrompts{Tags: defaultTagsSystem},
		Tags:   TagPrompts{Suggest: defaultTagsSuggest},
	}
}

func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

// LoadFrom reads prompts from path. Prompts missing from the file keep their
// built-in defaults.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderTags(params TagParams) (string, error) {
	return render(p.Tags.Suggest, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
