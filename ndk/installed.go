package ndk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/magiconair/properties"
	"golang.org/x/sync/errgroup"
)

// SourcePropertiesFile is the metadata file shipped in every NDK install.
const SourcePropertiesFile = "source.properties"

// revisionKey holds the full NDK revision in source.properties.
const revisionKey = "Pkg.Revision"

// Install describes one NDK found under {sdk}/ndk.
type Install struct {
	Name string
	Path string
	// Revision is Pkg.Revision from source.properties, empty if the file is
	// missing or has no revision.
	Revision string
	// Version is Revision (or Name when there is no revision) parsed as semver.
	// nil if neither parses.
	Version *semver.Version
}

// List returns every version-like NDK install under sdkRoot, newest first.
// Unlike Resolve, List reports a missing or unreadable ndk directory as an
// error. Installs whose version cannot be parsed sort last, by name.
func List(ctx context.Context, sdkRoot string) ([]Install, error) {
	dir := filepath.Join(sdkRoot, DirName)
	candidates, err := Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	installs := make([]Install, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inst, err := readInstall(filepath.Join(dir, c.Raw), c.Raw)
			if err != nil {
				return err
			}
			installs[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(installs, compareInstalls)
	return installs, nil
}

func readInstall(path, name string) (Install, error) {
	inst := Install{Name: name, Path: path}

	propsPath := filepath.Join(path, SourcePropertiesFile)
	p, err := properties.LoadFile(propsPath, properties.UTF8)
	switch {
	case err == nil:
		inst.Revision = p.GetString(revisionKey, "")
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Install{}, fmt.Errorf("read %s: %w", propsPath, err)
	}

	raw := inst.Revision
	if raw == "" {
		raw = name
	}
	if v, err := semver.NewVersion(raw); err == nil {
		inst.Version = v
	}
	return inst, nil
}

// compareInstalls sorts newest first; unparsable versions go last.
func compareInstalls(a, b Install) int {
	switch {
	case a.Version == nil && b.Version == nil:
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	case a.Version == nil:
		return 1
	case b.Version == nil:
		return -1
	}
	return b.Version.Compare(a.Version)
}
