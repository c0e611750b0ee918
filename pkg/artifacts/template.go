package artifacts

import (
	"bytes"
	_ "embed"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/velocity/pkg/tagged"
)

//go:embed templates.yaml
var templatesYAML []byte

// TemplateContext is what the offline templates are rendered with.
type TemplateContext struct {
	CompanyName    string
	Industry       string
	Needs          []string
	TargetTeam     string
	MeetingContext string
	Date           time.Time
}

type rawTemplate struct {
	Reasoning    []string           `yaml:"reasoning"`
	References   []tagged.Reference `yaml:"references"`
	Document     string             `yaml:"document"`
	Presentation string             `yaml:"presentation"`
}

var (
	loadOnce  sync.Once
	templates map[Kind]rawTemplate
	loadErr   error
)

func loadTemplates() (map[Kind]rawTemplate, error) {
	loadOnce.Do(func() {
		raw := map[string]rawTemplate{}
		if err := yaml.Unmarshal(templatesYAML, &raw); err != nil {
			loadErr = errors.Wrap(err, "parse offline templates")
			return
		}
		templates = map[Kind]rawTemplate{}
		for k, v := range raw {
			templates[Kind(k)] = v
		}
	})
	return templates, loadErr
}

// HasTemplate reports whether kind has an offline template of its own.
func HasTemplate(kind Kind) bool {
	ts, err := loadTemplates()
	if err != nil {
		return false
	}
	_, ok := ts[kind]
	return ok
}

func render(name string, text string, tc TemplateContext) (string, error) {
	t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, "parse template %s", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, tc); err != nil {
		return "", errors.Wrapf(err, "render template %s", name)
	}
	return buf.String(), nil
}

// OfflineEnvelope renders the offline template for kind. Kinds without a template
// of their own use the proposal template. This is the only place offline artifact
// content is produced: both the generation tools and the fallback responder use it.
func OfflineEnvelope(kind Kind, tc TemplateContext) (tagged.Envelope, error) {
	ts, err := loadTemplates()
	if err != nil {
		return tagged.Envelope{}, err
	}
	tpl, ok := ts[kind]
	if !ok {
		tpl = ts[KindProposal]
	}
	if tc.CompanyName == "" {
		tc.CompanyName = "Client"
	}
	if tc.Date.IsZero() {
		tc.Date = time.Now()
	}

	env := tagged.Envelope{
		Reasoning:  make([]string, 0, len(tpl.Reasoning)),
		References: make([]tagged.Reference, 0, len(tpl.References)),
		Artifact:   &tagged.ArtifactPayload{},
	}
	for _, r := range tpl.Reasoning {
		s, err := render(string(kind)+".reasoning", r, tc)
		if err != nil {
			return tagged.Envelope{}, err
		}
		env.Reasoning = append(env.Reasoning, strings.TrimSpace(s))
	}
	for _, ref := range tpl.References {
		title, err := render(string(kind)+".reference", ref.Title, tc)
		if err != nil {
			return tagged.Envelope{}, err
		}
		ref.Title = title
		env.References = append(env.References, ref)
	}
	if env.Artifact.DocumentContent, err = render(string(kind)+".document", tpl.Document, tc); err != nil {
		return tagged.Envelope{}, err
	}
	if env.Artifact.PresentationContent, err = render(string(kind)+".presentation", tpl.Presentation, tc); err != nil {
		return tagged.Envelope{}, err
	}
	return env, nil
}

// RenderOffline is OfflineEnvelope encoded in the tagged wire format.
func RenderOffline(kind Kind, tc TemplateContext) (string, error) {
	env, err := OfflineEnvelope(kind, tc)
	if err != nil {
		return "", err
	}
	return tagged.Encode(env)
}
