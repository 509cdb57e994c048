// Package layout describes where a Flutter project's Android build puts things.
//
// The Gradle scaffold redirects the root project's build directory from
// android/build to ../../build relative to it, which is the Flutter project's
// own build/ directory, and gives every subproject a directory named after
// itself underneath. Flutter then drops APKs and bundles under build/app/outputs.
package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoAPK is returned when the APK output directory holds no .apk files.
var ErrNoAPK = errors.New("no apk found")

// PreferredABI is the ABI picked first when several split APKs exist.
const PreferredABI = "arm64-v8a"

// Layout is rooted at a Flutter project directory (the one with pubspec.yaml).
type Layout struct {
	ProjectDir string
}

// New returns a Layout for projectDir.
func New(projectDir string) Layout {
	return Layout{ProjectDir: filepath.Clean(projectDir)}
}

// AndroidDir is the Gradle root project.
func (l Layout) AndroidDir() string {
	return filepath.Join(l.ProjectDir, "android")
}

// IOSDir is the Xcode project directory.
func (l Layout) IOSDir() string {
	return filepath.Join(l.ProjectDir, "ios")
}

// LocalProperties is android/local.properties.
func (l Layout) LocalProperties() string {
	return filepath.Join(l.AndroidDir(), "local.properties")
}

// RootBuildDir is the redirected Gradle root build directory:
// android/build/../../build.
func (l Layout) RootBuildDir() string {
	return filepath.Join(l.AndroidDir(), "build", "..", "..", "build")
}

// SubprojectBuildDir is the build directory of the named Gradle subproject.
func (l Layout) SubprojectBuildDir(name string) string {
	return filepath.Join(l.RootBuildDir(), name)
}

// APKDir is where `flutter build apk` writes APKs.
func (l Layout) APKDir() string {
	return filepath.Join(l.SubprojectBuildDir("app"), "outputs", "flutter-apk")
}

// BundleDir is where `flutter build appbundle` writes release AABs.
func (l Layout) BundleDir() string {
	return filepath.Join(l.SubprojectBuildDir("app"), "outputs", "bundle", "release")
}

// EnsureOutputDirs creates the APK and bundle directories.
func (l Layout) EnsureOutputDirs() error {
	for _, dir := range []string{l.APKDir(), l.BundleDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Clean removes the root build directory, like the Gradle clean task.
func (l Layout) Clean() error {
	return os.RemoveAll(l.RootBuildDir())
}

// Artifact is a build output file.
type Artifact struct {
	Path string
	Size int64
}

// Name returns the file name.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// SizeMB returns the size in MiB rounded to two decimals.
func (a Artifact) SizeMB() float64 {
	return math.Round(float64(a.Size)/1048576*100) / 100
}

// APKs lists the APKs in APKDir sorted by name. A missing directory yields
// no artifacts.
func (l Layout) APKs() ([]Artifact, error) {
	matches, err := filepath.Glob(filepath.Join(l.APKDir(), "*.apk"))
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)

	out := make([]Artifact, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		out = append(out, Artifact{Path: m, Size: info.Size()})
	}
	return out, nil
}

// PreferredAPK returns the first APK built for PreferredABI, or the first APK
// if none matches.
func (l Layout) PreferredAPK() (Artifact, error) {
	apks, err := l.APKs()
	if err != nil {
		return Artifact{}, err
	}
	if len(apks) == 0 {
		return Artifact{}, fmt.Errorf("%w in %s", ErrNoAPK, l.APKDir())
	}
	for _, a := range apks {
		if strings.Contains(a.Name(), PreferredABI) {
			return a, nil
		}
	}
	return apks[0], nil
}
