// Package ndk selects an installed Android NDK version from an SDK root.
//
// The SDK layout is:
//
//	{sdk}/ndk/{version}/source.properties
//
// where {version} is a directory such as "27.0.12077973". [Resolve] picks the
// newest installed version and falls back to [FallbackVersion] whenever the
// directory is missing, unreadable or holds no version-like entries. It never
// returns an error.
//
// The SDK root is always an explicit argument. Reading ANDROID_HOME and friends
// is the job of package sdk.
package ndk

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FallbackVersion is returned when no installed NDK can be found.
const FallbackVersion = "27.0.12077973"

// DirName is the SDK subdirectory holding side-by-side NDK installs.
const DirName = "ndk"

// candidateRegex matches directory names that look like an NDK version:
// digits, a dot, digits, then anything.
var candidateRegex = regexp.MustCompile(`^\d+\.\d+`)

// Candidate is a version-like directory name found under {sdk}/ndk.
type Candidate struct {
	// Raw is the directory name, returned verbatim when selected.
	Raw   string
	Major int
	Minor int
}

// Key returns the composite ranking key major*1000 + minor.
// It is only order-preserving while Minor < 1000.
func (c Candidate) Key() int {
	return c.Major*1000 + c.Minor
}

// IsCandidateName reports whether name looks like an NDK version directory.
func IsCandidateName(name string) bool {
	return candidateRegex.MatchString(name)
}

// ParseCandidate builds a Candidate from a directory name.
// The second return value is false if name is not version-like.
func ParseCandidate(name string) (Candidate, bool) {
	if !IsCandidateName(name) {
		return Candidate{}, false
	}
	parts := strings.Split(name, ".")
	c := Candidate{Raw: name}
	c.Major = segment(parts, 0)
	c.Minor = segment(parts, 1)
	return c, true
}

// segment parses parts[i] as a non-negative int, or 0.
func segment(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Resolver selects an NDK version. The zero value is not usable; use
// [NewResolver].
type Resolver struct {
	cfg config
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver{cfg: cfg}
}

// Resolve returns the newest NDK version installed under sdkRoot using
// default options.
func Resolve(sdkRoot string) string {
	return NewResolver().Resolve(sdkRoot)
}

// Resolve returns the newest NDK version installed under sdkRoot, or the
// configured fallback.
func (r *Resolver) Resolve(sdkRoot string) string {
	if sdkRoot == "" {
		// Joining "" would scan ./ndk relative to the working directory.
		r.cfg.logger.Debug("no sdk root, using fallback", "fallback", r.cfg.fallback)
		return r.cfg.fallback
	}
	dir := filepath.Join(sdkRoot, DirName)
	candidates, err := Scan(dir)
	if err != nil {
		r.cfg.logger.Debug("ndk directory unavailable, using fallback",
			"dir", dir, "fallback", r.cfg.fallback, "error", err)
		return r.cfg.fallback
	}

	best, ok := r.cfg.ranking.Best(candidates)
	if !ok {
		r.cfg.logger.Debug("no ndk versions installed, using fallback",
			"dir", dir, "fallback", r.cfg.fallback)
		return r.cfg.fallback
	}

	r.cfg.logger.Debug("using ndk version", "version", best.Raw, "candidates", len(candidates))
	return best.Raw
}

// Scan lists the version-like subdirectories of dir in directory order.
// Non-directories and names that do not look like versions are skipped.
func Scan(dir string) ([]Candidate, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: dir, Err: errNotDir}
	}

	// os.ReadDir sorts by name, so enumeration order is stable across platforms.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, e := range entries {
		if !isDir(dir, e) {
			continue
		}
		if c, ok := ParseCandidate(e.Name()); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// isDir reports whether e is a directory, following symlinks.
func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

type config struct {
	fallback string
	ranking  Ranking
	logger   *slog.Logger
}

func defaultConfig() config {
	return config{
		fallback: FallbackVersion,
		ranking:  CompositeRanking{},
		logger:   slog.New(slog.DiscardHandler),
	}
}
