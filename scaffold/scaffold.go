// Package scaffold generates a clean-architecture feature skeleton inside a
// Flutter project: data/domain/presentation folders, a repository pair, a
// presenter with its UI state, a page widget and a get_it DI module, and
// registers the DI module in the app's service locator.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	ErrNoPubspec     = errors.New("pubspec.yaml not found")
	ErrNoProjectName = errors.New("pubspec.yaml has no name")
	ErrInvalidPage   = errors.New("invalid page name")
	ErrExists        = errors.New("feature file already exists")
)

// ServiceLocatorPath is relative to the project root.
const ServiceLocatorPath = "lib/core/di/service_locator.dart"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var pageNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// featureDirs are created under lib/features/{page}.
var featureDirs = []string{
	"data/datasource",
	"data/models",
	"data/repositories",
	"domain/datasource",
	"domain/repositories",
	"domain/entities",
	"domain/usecase",
	"presentation/presenter",
	"presentation/ui",
	"presentation/widgets",
	"di",
}

// featureFiles maps a template to its path under lib/features/{page}.
// %s is replaced with the page name.
var featureFiles = []struct {
	template string
	path     string
}{
	{"domain_repository.dart.tmpl", "domain/repositories/%s_repository.dart"},
	{"repository_impl.dart.tmpl", "data/repositories/%s_repository_impl.dart"},
	{"di.dart.tmpl", "di/%s_di.dart"},
	{"presenter.dart.tmpl", "presentation/presenter/%s_presenter.dart"},
	{"ui_state.dart.tmpl", "presentation/presenter/%s_ui_state.dart"},
	{"page.dart.tmpl", "presentation/ui/%s_page.dart"},
}

// Feature names a feature to generate.
type Feature struct {
	// Project is the Dart package name from pubspec.yaml.
	Project string
	// Page is the snake_case feature name.
	Page string
	// Prefix is the PascalCase class prefix.
	Prefix string
}

// NewFeature normalises page (lowercased) and derives the class prefix.
func NewFeature(project, page string) (Feature, error) {
	page = strings.ToLower(strings.TrimSpace(page))
	if !pageNameRegex.MatchString(page) {
		return Feature{}, fmt.Errorf("%w %q: use snake_case letters, digits and underscores", ErrInvalidPage, page)
	}
	return Feature{Project: project, Page: page, Prefix: ClassPrefix(page)}, nil
}

// Dir is the feature directory relative to the project root.
func (f Feature) Dir() string {
	return filepath.Join("lib", "features", f.Page)
}

// ClassPrefix converts snake_case to PascalCase: "user_profile" -> "UserProfile".
func ClassPrefix(page string) string {
	var b strings.Builder
	for _, word := range strings.Split(page, "_") {
		if word == "" {
			continue
		}
		r := []rune(strings.ToLower(word))
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// ProjectName reads the package name from {projectDir}/pubspec.yaml.
func ProjectName(projectDir string) (string, error) {
	path := filepath.Join(projectDir, "pubspec.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w in %s: run this from the root of a Flutter project", ErrNoPubspec, projectDir)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var pubspec struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	name := strings.TrimSpace(pubspec.Name)
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoProjectName, path)
	}
	return name, nil
}

// Options control Generate.
type Options struct {
	// Force overwrites existing feature files.
	Force  bool
	Logger *slog.Logger
}

// Report describes what Generate did. Paths are relative to the project root.
type Report struct {
	Feature Feature
	Dirs    []string
	Files   []string
	// ServiceLocatorUpdated is true if service_locator.dart was modified.
	ServiceLocatorUpdated bool
	// DICall is the setup line registered in the service locator.
	DICall   string
	Warnings []string
}

// Generate creates the feature page in the project at projectDir.
func Generate(projectDir, page string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	project, err := ProjectName(projectDir)
	if err != nil {
		return nil, err
	}
	feature, err := NewFeature(project, page)
	if err != nil {
		return nil, err
	}

	rendered, err := render(feature)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		for rel := range rendered {
			if _, err := os.Stat(filepath.Join(projectDir, rel)); err == nil {
				return nil, fmt.Errorf("%w: %s (use force to overwrite)", ErrExists, rel)
			}
		}
	}

	report := &Report{Feature: feature}
	for _, d := range featureDirs {
		rel := filepath.Join(feature.Dir(), filepath.FromSlash(d))
		if err := os.MkdirAll(filepath.Join(projectDir, rel), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", rel, err)
		}
		report.Dirs = append(report.Dirs, rel)
	}

	for _, f := range featureFiles {
		rel := featurePath(feature, f.path)
		if err := os.WriteFile(filepath.Join(projectDir, rel), rendered[rel], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}
		logger.Debug("wrote feature file", "path", rel)
		report.Files = append(report.Files, rel)
	}

	if err := updateServiceLocator(projectDir, feature, report); err != nil {
		return nil, err
	}
	return report, nil
}

func featurePath(f Feature, pattern string) string {
	return filepath.Join(f.Dir(), filepath.FromSlash(fmt.Sprintf(pattern, f.Page)))
}

func render(f Feature) (map[string][]byte, error) {
	out := make(map[string][]byte, len(featureFiles))
	for _, ff := range featureFiles {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, ff.template, f); err != nil {
			return nil, fmt.Errorf("render %s: %w", ff.template, err)
		}
		out[featurePath(f, ff.path)] = buf.Bytes()
	}
	return out, nil
}
