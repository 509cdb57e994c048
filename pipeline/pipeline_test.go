package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/albertocavalcante/go-flutterkit/layout"
	"github.com/google/go-cmp/cmp"
)

// fakeRunner records commands and fails those whose joined argv is in fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	dirs  []string
	fail  map[string]string // command line -> stderr
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	f.dirs = append(f.dirs, dir)
	if stderr, ok := f.fail[line]; ok {
		return Output{Stderr: stderr}, errors.New("exit status 1")
	}
	return Output{}, nil
}

func newTestPipeline(t *testing.T, r Runner, opts ...Option) (*Pipeline, layout.Layout, *bytes.Buffer) {
	t.Helper()
	l := layout.New(t.TempDir())
	var out bytes.Buffer
	opts = append([]Option{WithRunner(r), WithOutput(&out)}, opts...)
	p := New(l, opts...)
	p.goos = "linux"
	return p, l, &out
}

func TestRun_APK(t *testing.T) {
	r := &fakeRunner{}
	p, l, out := newTestPipeline(t, r)

	// Simulate flutter having produced split APKs.
	if err := l.EnsureOutputDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(l.APKDir(), "app-release.apk"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background(), "apk")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failures: %v", res.Err())
	}

	want := []string{
		"flutter clean",
		"flutter pub get",
		"dart run build_runner build --delete-conflicting-outputs",
		"flutter build apk --release --obfuscate --target-platform android-arm64 --split-debug-info=./",
		"xdg-open " + l.APKDir(),
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	for i, dir := range r.dirs {
		if dir != l.ProjectDir {
			t.Errorf("call %d ran in %q, want project dir", i, dir)
		}
	}

	text := out.String()
	for _, s := range []string{"Building APK (Full Process)...", "APK built successfully!", "APK: app-release.apk | Size: 0.00 MB"} {
		if !strings.Contains(text, s) {
			t.Errorf("output missing %q:\n%s", s, text)
		}
	}
}

func TestRun_AABSettings(t *testing.T) {
	r := &fakeRunner{}
	p, _, _ := newTestPipeline(t, r, WithBuildSettings(BuildSettings{}))

	if _, err := p.Run(context.Background(), "aab"); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"flutter clean",
		"flutter pub get",
		"dart run build_runner build --delete-conflicting-outputs",
		"flutter build appbundle --release",
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	r := &fakeRunner{fail: map[string]string{"flutter analyze": "3 issues found"}}
	p, _, out := newTestPipeline(t, r)

	res, err := p.Run(context.Background(), "setup")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 7 {
		t.Errorf("ran %d commands, want all 7: %v", len(r.calls), r.calls)
	}
	if !res.Failed() {
		t.Fatal("expected a failed step")
	}

	errs := res.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	var stepErr *StepError
	if !errors.As(errs[0], &stepErr) {
		t.Fatalf("error %T is not a *StepError", errs[0])
	}
	if stepErr.Stderr != "3 issues found" {
		t.Errorf("Stderr = %q", stepErr.Stderr)
	}
	if !strings.Contains(out.String(), "Error Output:\n3 issues found") {
		t.Errorf("stderr not shown:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Full setup finished with errors.") {
		t.Errorf("missing failure summary:\n%s", out.String())
	}
}

func TestRun_ReleaseRunInstallsPreferredAPK(t *testing.T) {
	r := &fakeRunner{}
	p, l, out := newTestPipeline(t, r, WithADB("/sdk/platform-tools/adb"))
	if err := l.EnsureOutputDirs(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"app-armeabi-v7a-release.apk", "app-arm64-v8a-release.apk"} {
		if err := os.WriteFile(filepath.Join(l.APKDir(), name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := p.Run(context.Background(), "release-run")
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err())
	}

	last := r.calls[len(r.calls)-1]
	want := "/sdk/platform-tools/adb install -r " + filepath.Join(l.APKDir(), "app-arm64-v8a-release.apk")
	if last != want {
		t.Errorf("install command = %q, want %q", last, want)
	}
	if !strings.Contains(out.String(), "APK built and installed successfully!") {
		t.Errorf("missing success line:\n%s", out.String())
	}
}

func TestRun_ReleaseRunWithoutAPK(t *testing.T) {
	r := &fakeRunner{}
	p, _, out := newTestPipeline(t, r)

	res, err := p.Run(context.Background(), "release-run")
	if err != nil {
		t.Fatal(err)
	}
	last := res.Steps[len(res.Steps)-1]
	if last.Err == nil {
		t.Fatal("expected install step to fail without an APK")
	}
	if !strings.Contains(out.String(), "APK built but install failed!") {
		t.Errorf("missing install failure line:\n%s", out.String())
	}
}

func TestRun_Pod(t *testing.T) {
	r := &fakeRunner{}
	p, l, _ := newTestPipeline(t, r)
	if err := os.MkdirAll(l.IOSDir(), 0755); err != nil {
		t.Fatal(err)
	}
	lock := filepath.Join(l.IOSDir(), "Podfile.lock")
	if err := os.WriteFile(lock, []byte("PODS:"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background(), "pod")
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		t.Fatal(res.Err())
	}
	if _, err := os.Stat(lock); !os.IsNotExist(err) {
		t.Error("Podfile.lock was not removed")
	}
	if diff := cmp.Diff([]string{"pod repo update", "pod install"}, r.calls); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	for _, dir := range r.dirs {
		if dir != l.IOSDir() {
			t.Errorf("pod ran in %q, want %q", dir, l.IOSDir())
		}
	}

	// A second run without Podfile.lock still succeeds.
	res, err = p.Run(context.Background(), "pod")
	if err != nil || res.Failed() {
		t.Errorf("second pod run failed: %v %v", err, res.Err())
	}
}

func TestRun_UnknownTask(t *testing.T) {
	p, _, _ := newTestPipeline(t, &fakeRunner{})
	_, err := p.Run(context.Background(), "deploy")
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Run(deploy) error = %v, want ErrUnknownTask", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	r := &fakeRunner{}
	p, _, _ := newTestPipeline(t, r)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "cleanup")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("commands ran after cancel: %v", r.calls)
	}
}

func TestTasks(t *testing.T) {
	want := []string{"apk", "aab", "lang", "db", "setup", "cache-repair", "cleanup", "release-run", "pod"}
	if diff := cmp.Diff(want, Tasks()); diff != "" {
		t.Errorf("Tasks() mismatch (-want +got):\n%s", diff)
	}
	if s, ok := Describe("pod"); !ok || s != "Update iOS pods" {
		t.Errorf("Describe(pod) = %q, %v", s, ok)
	}
	if _, ok := Describe("nope"); ok {
		t.Error("Describe(nope) should fail")
	}
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "/out"}},
		{"linux", []string{"xdg-open", "/out"}},
		{"windows", []string{"cmd", "/c", "start", "", "/out"}},
		{"plan9", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, OpenCommand(tt.goos, "/out")); diff != "" {
			t.Errorf("OpenCommand(%s) mismatch (-want +got):\n%s", tt.goos, diff)
		}
	}
}

func TestStepError(t *testing.T) {
	base := errors.New("exit status 2")
	err := &StepError{Step: "Building APK...", Command: []string{"flutter", "build", "apk"}, Err: base}
	if !errors.Is(err, base) {
		t.Error("StepError should unwrap to its cause")
	}
	if got, want := err.Error(), "Building APK... (flutter build apk): exit status 2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
