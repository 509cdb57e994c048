package ndk

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// makeSDK creates {tmp}/ndk with the given subdirectories and returns {tmp}.
func makeSDK(t *testing.T, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	ndkDir := filepath.Join(root, DirName)
	if err := os.MkdirAll(ndkDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(ndkDir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
		want string
	}{
		{"highest major wins", []string{"21.0.1", "23.1.0", "19.9.9"}, "23.1.0"},
		{"non-matching names excluded", []string{"foo", "bar", "23.1.0"}, "23.1.0"},
		{"no matches falls back", []string{"foo", "bar"}, FallbackVersion},
		{"same major higher minor", []string{"23.0.0", "23.9.0"}, "23.9.0"},
		{"empty ndk dir falls back", nil, FallbackVersion},
		{"two-part version", []string{"25.2", "25.1.8937393"}, "25.2"},
		{"trailing text allowed", []string{"26.0.10792818-beta1", "25.2.9519653"}, "26.0.10792818-beta1"},
		{"leading text rejected", []string{"r23b", "android-ndk-r25", "21.4.7075529"}, "21.4.7075529"},
		{"single number rejected", []string{"27"}, FallbackVersion},
		// Composite key ignores the patch segment; os.ReadDir order makes the
		// lexicographically greater name the last one seen.
		{"tie goes to last listed", []string{"25.1.9999999", "25.1.8937393"}, "25.1.9999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := makeSDK(t, tt.dirs...)
			if got := Resolve(root); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_MissingDirectory(t *testing.T) {
	root := t.TempDir()
	if got := Resolve(root); got != FallbackVersion {
		t.Errorf("Resolve() = %q, want fallback %q", got, FallbackVersion)
	}

	if got := Resolve(filepath.Join(root, "does", "not", "exist")); got != FallbackVersion {
		t.Errorf("Resolve(nonexistent) = %q, want fallback %q", got, FallbackVersion)
	}

	if got := Resolve(""); got != FallbackVersion {
		t.Errorf("Resolve(\"\") = %q, want fallback %q", got, FallbackVersion)
	}
}

func TestResolve_NDKIsFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, DirName), []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(root); got != FallbackVersion {
		t.Errorf("Resolve() = %q, want fallback %q", got, FallbackVersion)
	}
}

func TestResolve_SkipsFiles(t *testing.T) {
	root := makeSDK(t, "21.4.7075529")
	if err := os.WriteFile(filepath.Join(root, DirName, "99.0.0"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(root); got != "21.4.7075529" {
		t.Errorf("Resolve() = %q, want %q", got, "21.4.7075529")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	root := makeSDK(t, "21.0.1", "23.1.0", "foo", "23.1.5")
	first := Resolve(root)
	second := Resolve(root)
	if first != second {
		t.Errorf("Resolve not idempotent: %q then %q", first, second)
	}
}

func TestResolver_Options(t *testing.T) {
	t.Run("custom fallback", func(t *testing.T) {
		r := NewResolver(WithFallback("26.3.11579264"))
		if got := r.Resolve(t.TempDir()); got != "26.3.11579264" {
			t.Errorf("Resolve() = %q, want custom fallback", got)
		}
	})

	t.Run("empty fallback ignored", func(t *testing.T) {
		r := NewResolver(WithFallback(""))
		if got := r.Resolve(t.TempDir()); got != FallbackVersion {
			t.Errorf("Resolve() = %q, want %q", got, FallbackVersion)
		}
	})

	t.Run("semver ranking", func(t *testing.T) {
		// 24.1500 has composite key 25500, above 25.0's 25000.
		root := makeSDK(t, "24.1500.0", "25.0.0")
		if got := NewResolver().Resolve(root); got != "24.1500.0" {
			t.Errorf("composite Resolve() = %q, want %q", got, "24.1500.0")
		}
		if got := NewResolver(WithRanking(SemverRanking{})).Resolve(root); got != "25.0.0" {
			t.Errorf("semver Resolve() = %q, want %q", got, "25.0.0")
		}
	})

	t.Run("logger receives decision", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		root := makeSDK(t, "23.1.0")
		NewResolver(WithLogger(logger)).Resolve(root)
		if !strings.Contains(buf.String(), "version=23.1.0") {
			t.Errorf("log output missing chosen version: %s", buf.String())
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		root := makeSDK(t, "23.1.0")
		if got := NewResolver(WithLogger(nil)).Resolve(root); got != "23.1.0" {
			t.Errorf("Resolve() = %q, want %q", got, "23.1.0")
		}
	})
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name   string
		want   Candidate
		wantOK bool
	}{
		{"27.0.12077973", Candidate{Raw: "27.0.12077973", Major: 27, Minor: 0}, true},
		{"23.1", Candidate{Raw: "23.1", Major: 23, Minor: 1}, true},
		{"23.1-rc", Candidate{Raw: "23.1-rc", Major: 23, Minor: 0}, true},
		{"99999999999999999999.1", Candidate{Raw: "99999999999999999999.1", Major: 0, Minor: 1}, true},
		{"foo", Candidate{}, false},
		{"23", Candidate{}, false},
		{".1.2", Candidate{}, false},
		{"", Candidate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCandidate(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ParseCandidate(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCandidate(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}
}

func TestCandidateKey(t *testing.T) {
	c := Candidate{Major: 23, Minor: 9}
	if got := c.Key(); got != 23009 {
		t.Errorf("Key() = %d, want 23009", got)
	}
}

func TestScan_Order(t *testing.T) {
	root := makeSDK(t, "23.1.0", "21.0.1", "notes", "22.0.0")
	got, err := Scan(filepath.Join(root, DirName))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range got {
		names = append(names, c.Raw)
	}
	want := []string{"21.0.1", "22.0.0", "23.1.0"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Scan() names mismatch (-want +got):\n%s", diff)
	}
}
