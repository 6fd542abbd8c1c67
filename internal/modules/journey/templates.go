package journey

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/journey-backend/internal/domain/journey"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

const templatesEnv = "JOURNEY_TEMPLATES_YAML"

//go:embed templates.yaml
var templatesFS embed.FS

// Template is one rotating variant of a category.
type Template struct {
	Title       string
	Description string
	Tasks       [journey.TasksPerTree]string
}

// Templates is the static category -> variants table.
type Templates struct {
	byCategory map[journey.Category][journey.TemplateVariants]Template
}

// Variant returns the template used for day: index day mod 3.
func (t *Templates) Variant(category journey.Category, day int) (Template, bool) {
	if t == nil {
		return Template{}, false
	}
	variants, ok := t.byCategory[category]
	if !ok {
		return Template{}, false
	}
	idx := day % journey.TemplateVariants
	if idx < 0 {
		idx += journey.TemplateVariants
	}
	return variants[idx], true
}

type yamlTemplates struct {
	Version    int                              `yaml:"version"`
	Categories map[string][]yamlTemplateVariant `yaml:"categories"`
}

type yamlTemplateVariant struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Tasks       map[string]string `yaml:"tasks"`
}

// ParseTemplates decodes and validates a template table. Every category must
// be present with exactly three variants, each with one task per slot.
func ParseTemplates(data []byte) (*Templates, error) {
	var doc yamlTemplates
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, errors.New("templates: no categories")
	}
	out := &Templates{byCategory: make(map[journey.Category][journey.TemplateVariants]Template, len(journey.AllCategories))}
	for rawName, variants := range doc.Categories {
		category, err := journey.ParseCategory(rawName)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		if len(variants) != journey.TemplateVariants {
			return nil, fmt.Errorf("templates: category %s has %d variants, want %d", category, len(variants), journey.TemplateVariants)
		}
		var table [journey.TemplateVariants]Template
		for i, v := range variants {
			tpl := Template{
				Title:       strings.TrimSpace(v.Title),
				Description: strings.TrimSpace(v.Description),
			}
			if tpl.Title == "" {
				return nil, fmt.Errorf("templates: %s[%d] missing title", category, i)
			}
			if len(v.Tasks) != journey.TasksPerTree {
				return nil, fmt.Errorf("templates: %s[%d] has %d tasks, want %d", category, i, len(v.Tasks), journey.TasksPerTree)
			}
			for s, slot := range journey.Slots {
				title := strings.TrimSpace(v.Tasks[string(slot)])
				if title == "" {
					return nil, fmt.Errorf("templates: %s[%d] missing %s task", category, i, slot)
				}
				tpl.Tasks[s] = title
			}
			table[i] = tpl
		}
		out.byCategory[category] = table
	}
	for _, category := range journey.AllCategories {
		if _, ok := out.byCategory[category]; !ok {
			return nil, fmt.Errorf("templates: missing category %s", category)
		}
	}
	return out, nil
}

// LoadTemplates reads the table from path, or the embedded table when path is empty.
func LoadTemplates(path string) (*Templates, error) {
	var (
		data []byte
		err  error
	)
	if path = strings.TrimSpace(path); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = templatesFS.ReadFile("templates.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(data)
}

var (
	defaultOnce      sync.Once
	defaultTemplates *Templates
)

// DefaultTemplates loads the table once, honouring JOURNEY_TEMPLATES_YAML.
// A broken override falls back to the embedded table, and a broken embedded
// table falls back to the built-in generic one.
func DefaultTemplates(log *logger.Logger) *Templates {
	defaultOnce.Do(func() {
		if override := strings.TrimSpace(os.Getenv(templatesEnv)); override != "" {
			tpl, err := LoadTemplates(override)
			if err == nil {
				defaultTemplates = tpl
				return
			}
			if log != nil {
				log.Warn("journey: template override failed; using embedded table", "path", override, "error", err)
			}
		}
		tpl, err := LoadTemplates("")
		if err != nil {
			if log != nil {
				log.Error("journey: embedded templates invalid; using fallback", "error", err)
			}
			tpl = fallbackTemplates()
		}
		defaultTemplates = tpl
	})
	return defaultTemplates
}

func fallbackTemplates() *Templates {
	out := &Templates{byCategory: make(map[journey.Category][journey.TemplateVariants]Template, len(journey.AllCategories))}
	for _, category := range journey.AllCategories {
		name := strings.ToUpper(string(category[:1])) + string(category[1:])
		var table [journey.TemplateVariants]Template
		for i := range table {
			table[i] = Template{
				Title:       fmt.Sprintf("%s Focus %d", name, i+1),
				Description: fmt.Sprintf("Small daily steps for %s.", category),
				Tasks: [journey.TasksPerTree]string{
					fmt.Sprintf("Morning %s practice", category),
					fmt.Sprintf("Midday %s check-in", category),
					fmt.Sprintf("Evening %s reflection", category),
				},
			}
		}
		out.byCategory[category] = table
	}
	return out
}
