package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FeatureDIMarker is the comment after which feature DI setup calls go.
const FeatureDIMarker = "//Feature DI setup"

var (
	importRegex    = regexp.MustCompile(`import [^;]+;`)
	markerRegex    = regexp.MustCompile(`(` + regexp.QuoteMeta(FeatureDIMarker) + `\s*\n)`)
	setupCallRegex = regexp.MustCompile(`(\s+await\s+\w+\.setup\(_serviceLocator\);\s*\n)(\s*})`)
)

// ImportLine is the Dart import of the feature's DI module.
func (f Feature) ImportLine() string {
	return fmt.Sprintf("import 'package:%s/features/%s/di/%s_di.dart';", f.Project, f.Page, f.Page)
}

// DICall is the service locator line that registers the feature.
func (f Feature) DICall() string {
	return fmt.Sprintf("    await %sDi.setup(_serviceLocator);", f.Prefix)
}

// RegisterFeature returns content with the feature's import and DI setup call
// added. The import goes after the last existing import. The call goes right
// after FeatureDIMarker; without a marker, one is created after the last
// `await X.setup(_serviceLocator);` line. ok is false if no place for the call
// was found. Content that already registers the feature is returned unchanged.
func RegisterFeature(content string, f Feature) (updated string, ok bool) {
	imp := f.ImportLine()
	if !strings.Contains(content, imp) {
		if locs := importRegex.FindAllStringIndex(content, -1); len(locs) > 0 {
			end := locs[len(locs)-1][1]
			content = content[:end] + "\n" + imp + content[end:]
		}
	}

	call := f.DICall()
	if strings.Contains(content, strings.TrimSpace(call)) {
		return content, true
	}

	if markerRegex.MatchString(content) {
		return markerRegex.ReplaceAllString(content, "${1}"+escapeDollar(call)+"\n"), true
	}

	if !setupCallRegex.MatchString(content) {
		return content, false
	}
	repl := "${1}\n    " + FeatureDIMarker + "\n" + escapeDollar(call) + "\n${2}"
	return setupCallRegex.ReplaceAllString(content, repl), true
}

func escapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func updateServiceLocator(projectDir string, f Feature, report *Report) error {
	path := filepath.Join(projectDir, filepath.FromSlash(ServiceLocatorPath))
	report.DICall = strings.TrimSpace(f.DICall())

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("could not find service_locator.dart at %s; feature DI registration skipped", ServiceLocatorPath))
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	updated, ok := RegisterFeature(string(data), f)
	if !ok {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("no %q marker or setup call in %s; add %q manually", FeatureDIMarker, ServiceLocatorPath, report.DICall))
	}
	if updated == string(data) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	report.ServiceLocatorUpdated = true
	return nil
}
