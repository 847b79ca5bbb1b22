package notify

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Notification kinds, also used as metric labels
const (
	KindWordCountRejected  = "word_count_rejected"
	KindPlagiarismRejected = "plagiarism_rejected"
	KindPublished          = "published"
)

//go:embed templates.yaml
var templatesYAML []byte

// TemplateData is the value templates are executed with
type TemplateData struct {
	AuthorName string
	WordCount  int
	Minimum    int
	Similarity float64
	PublicURL  string
}

type templateDef struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type compiledTemplate struct {
	subject string
	body    *template.Template
}

// Templates renders notification emails by kind
type Templates struct {
	byKind map[string]compiledTemplate
}

// LoadTemplates parses the embedded template file
func LoadTemplates() (*Templates, error) {
	return ParseTemplates(templatesYAML)
}

// ParseTemplates parses YAML mapping kind -> {subject, body}.
// Every known kind must be present.
func ParseTemplates(data []byte) (*Templates, error) {
	var defs map[string]templateDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal templates: %w", err)
	}

	t := &Templates{byKind: make(map[string]compiledTemplate, len(defs))}
	for kind, def := range defs {
		body, err := template.New(kind).Option("missingkey=error").Parse(def.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		t.byKind[kind] = compiledTemplate{subject: def.Subject, body: body}
	}

	for _, kind := range []string{KindWordCountRejected, KindPlagiarismRejected, KindPublished} {
		if _, ok := t.byKind[kind]; !ok {
			return nil, fmt.Errorf("missing %s template", kind)
		}
	}
	return t, nil
}

// Render returns the message for kind with no recipient set
func (t *Templates) Render(kind string, data TemplateData) (Message, error) {
	tmpl, ok := t.byKind[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", kind)
	}

	var body strings.Builder
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return Message{
		Subject: tmpl.subject,
		Body:    body.String(),
	}, nil
}
