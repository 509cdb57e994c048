// Package sdk locates the Android SDK root.
//
// The lookup order follows the Flutter Gradle scaffold: ANDROID_HOME, then
// ANDROID_SDK_ROOT. Callers that also have a local.properties can fall back to
// its sdk.dir entry via [Root].
//
// Environment access is injected as a [LookupFunc] so callers and tests never
// have to mutate the process environment.
package sdk

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment variables consulted, in priority order.
const (
	EnvAndroidHome    = "ANDROID_HOME"
	EnvAndroidSDKRoot = "ANDROID_SDK_ROOT"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the real process environment.
var OSLookup LookupFunc = os.LookupEnv

// MapLookup returns a LookupFunc backed by m.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Source says where a root came from.
type Source string

const (
	SourceNone            Source = ""
	SourceEnvAndroidHome  Source = EnvAndroidHome
	SourceEnvSDKRoot      Source = EnvAndroidSDKRoot
	SourceLocalProperties Source = "local.properties"
	SourceOverride        Source = "override"
)

// RootFromEnv returns the SDK root from the environment, or "" if neither
// variable is set. Empty values count as unset.
func RootFromEnv(lookup LookupFunc) string {
	root, _ := rootFromEnv(lookup)
	return root
}

func rootFromEnv(lookup LookupFunc) (string, Source) {
	if lookup == nil {
		return "", SourceNone
	}
	if v, ok := lookup(EnvAndroidHome); ok && v != "" {
		return v, SourceEnvAndroidHome
	}
	if v, ok := lookup(EnvAndroidSDKRoot); ok && v != "" {
		return v, SourceEnvSDKRoot
	}
	return "", SourceNone
}

// Root resolves the SDK root from the environment, falling back to the
// sdk.dir value from local.properties (pass "" if unknown).
func Root(lookup LookupFunc, sdkDir string) (string, Source) {
	if root, src := rootFromEnv(lookup); root != "" {
		return root, src
	}
	if sdkDir != "" {
		return sdkDir, SourceLocalProperties
	}
	return "", SourceNone
}

// Layout gives well-known paths inside an SDK root.
type Layout struct {
	Root string
}

// NDKDir is the side-by-side NDK directory.
func (l Layout) NDKDir() string {
	return filepath.Join(l.Root, "ndk")
}

// LegacyNDKBundle is the pre side-by-side single NDK install.
func (l Layout) LegacyNDKBundle() string {
	return filepath.Join(l.Root, "ndk-bundle")
}

// NDK is the install directory for a specific NDK version.
func (l Layout) NDK(version string) string {
	return filepath.Join(l.NDKDir(), version)
}

// ADB is the adb binary from platform-tools.
func (l Layout) ADB() string {
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	return filepath.Join(l.Root, "platform-tools", name)
}

// Exists reports whether Root is an existing directory.
func (l Layout) Exists() bool {
	if l.Root == "" {
		return false
	}
	info, err := os.Stat(l.Root)
	return err == nil && info.IsDir()
}
