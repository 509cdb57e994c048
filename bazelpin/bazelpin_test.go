package bazelpin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/albertocavalcante/go-flutterkit/internal/buildutil"
	"github.com/bazelbuild/buildtools/build"
	"github.com/google/go-cmp/cmp"
)

// pathsIn returns the path attribute of every NDK declaration in content.
func pathsIn(t *testing.T, filename string, content []byte) []string {
	t.Helper()
	f, err := build.Parse(filename, content)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	ext := extensionProxies(f)
	var out []string
	for _, stmt := range f.Stmt {
		if call, ok := stmt.(*build.CallExpr); ok && isNDKDeclaration(call, ext) {
			out = append(out, buildutil.String(call, pathAttr))
		}
	}
	return out
}

func TestPin_Workspace(t *testing.T) {
	src := []byte(`workspace(name = "app")

android_sdk_repository(
    name = "androidsdk",
    path = "/opt/android",
)

android_ndk_repository(
    name = "androidndk",
    path = "/opt/android/ndk/25.1.8937393",
    api_level = 21,
)
`)
	res, err := Pin("WORKSPACE", src, "/opt/android/ndk/27.0.12077973")
	if err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if res.Calls != 1 {
		t.Errorf("Calls = %d, want 1", res.Calls)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if diff := cmp.Diff([]string{"/opt/android/ndk/25.1.8937393"}, res.Previous); diff != "" {
		t.Errorf("Previous mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/opt/android/ndk/27.0.12077973"}, pathsIn(t, "WORKSPACE", res.Content)); diff != "" {
		t.Errorf("pinned paths mismatch (-want +got):\n%s", diff)
	}

	again, err := Pin("WORKSPACE", res.Content, "/opt/android/ndk/27.0.12077973")
	if err != nil {
		t.Fatal(err)
	}
	if again.Changed {
		t.Errorf("re-pinning the same path changed the file:\n%s", again.Content)
	}
}

func TestPin_AddsMissingPath(t *testing.T) {
	src := []byte("android_ndk_repository(name = \"androidndk\")\n")
	res, err := Pin("WORKSPACE", src, filepath.Join("sdk", "ndk", "26.3.11579264"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{""}, res.Previous); diff != "" {
		t.Errorf("Previous mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sdk/ndk/26.3.11579264"}, pathsIn(t, "WORKSPACE", res.Content)); diff != "" {
		t.Errorf("pinned paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPin_ModuleExtension(t *testing.T) {
	src := []byte(`module(name = "app")

bazel_dep(name = "rules_android_ndk", version = "0.1.2")

android_ndk_repository_extension = use_extension("@rules_android_ndk//:extension.bzl", "android_ndk_repository_extension")
android_ndk_repository_extension.configure(api_level = 21)
use_repo(android_ndk_repository_extension, "androidndk")

other = use_extension("//:other.bzl", "other_extension")
other.configure(path = "/untouched")
`)
	res, err := Pin("MODULE.bazel", src, "/sdk/ndk/27.0.12077973")
	if err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if res.Calls != 1 {
		t.Errorf("Calls = %d, want 1", res.Calls)
	}
	if diff := cmp.Diff([]string{"/sdk/ndk/27.0.12077973"}, pathsIn(t, "MODULE.bazel", res.Content)); diff != "" {
		t.Errorf("pinned paths mismatch (-want +got):\n%s", diff)
	}

	// The unrelated extension keeps its path.
	f, err := build.Parse("MODULE.bazel", res.Content)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}
		if recv, _, ok := buildutil.MethodCall(call); ok && recv == "other" {
			found = true
			if got := buildutil.String(call, pathAttr); got != "/untouched" {
				t.Errorf("other.configure path = %q, want /untouched", got)
			}
		}
	}
	if !found {
		t.Error("other.configure call disappeared")
	}
}

func TestPin_NoDeclaration(t *testing.T) {
	_, err := Pin("WORKSPACE", []byte("workspace(name = \"app\")\n"), "/sdk/ndk/27.0.12077973")
	if !errors.Is(err, ErrNoNDKRepository) {
		t.Errorf("Pin() error = %v, want ErrNoNDKRepository", err)
	}
}

func TestPin_SyntaxError(t *testing.T) {
	if _, err := Pin("WORKSPACE", []byte("android_ndk_repository(\n"), "/x"); err == nil {
		t.Error("expected parse error")
	}
}

func TestPinFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WORKSPACE")
	if err := os.WriteFile(path, []byte("android_ndk_repository(name = \"androidndk\", path = \"/old\")\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := PinFile(path, "/new")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("expected a change")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/new"}, pathsIn(t, "WORKSPACE", data)); diff != "" {
		t.Errorf("file not rewritten (-want +got):\n%s", diff)
	}

	if _, err := PinFile(filepath.Join(t.TempDir(), "missing"), "/new"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("PinFile(missing) error = %v, want not-exist", err)
	}
}
