// Package flutterkit drives the Android side of a Flutter project: it picks
// the NDK the Gradle build should use, locates the Android SDK, reads
// local.properties, runs the build/maintenance pipelines and scaffolds
// feature pages.
//
// # Quick Start
//
// The NDK version alone needs nothing but an SDK root:
//
//	version := flutterkit.ResolveNDKVersion(os.Getenv("ANDROID_HOME"))
//
// Everything else hangs off a Project:
//
//	p, err := flutterkit.Open(".", flutterkit.WithLogger(logger))
//	fmt.Println("Using NDK Version:", p.NDKVersion())
//	res, err := p.Pipeline().Run(ctx, "apk")
//
// # Configuration
//
// Open reads flutterkit.toml from the project root if present (see package
// config). Options passed to Open win over the file, and the file wins over
// ANDROID_HOME, ANDROID_SDK_ROOT and local.properties.
package flutterkit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/albertocavalcante/go-flutterkit/bazelpin"
	"github.com/albertocavalcante/go-flutterkit/config"
	"github.com/albertocavalcante/go-flutterkit/layout"
	"github.com/albertocavalcante/go-flutterkit/localprops"
	"github.com/albertocavalcante/go-flutterkit/ndk"
	"github.com/albertocavalcante/go-flutterkit/pipeline"
	"github.com/albertocavalcante/go-flutterkit/scaffold"
	"github.com/albertocavalcante/go-flutterkit/sdk"
)

// ResolveNDKVersion returns the newest NDK installed under sdkRoot/ndk, or
// ndk.FallbackVersion. It never fails.
func ResolveNDKVersion(sdkRoot string) string {
	return ndk.Resolve(sdkRoot)
}

// Project is a Flutter project on disk with its resolved SDK environment.
type Project struct {
	Layout          layout.Layout
	Config          *config.Config
	LocalProperties *localprops.Properties

	sdkRoot   string
	sdkSource sdk.Source
	resolver  *ndk.Resolver
	logger    *slog.Logger
}

// Open loads the project rooted at dir. Missing flutterkit.toml and
// local.properties files are not errors.
func Open(dir string, opts ...Option) (*Project, error) {
	cfg := projectConfig{lookup: sdk.OSLookup}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	l := layout.New(abs)

	configFile := cfg.configFile
	if configFile == "" {
		configFile = filepath.Join(abs, config.FileName)
	}
	fileCfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	props, err := localprops.Load(l.LocalProperties())
	if err != nil {
		return nil, err
	}

	p := &Project{
		Layout:          l,
		Config:          fileCfg,
		LocalProperties: props,
		logger:          logger,
	}

	switch {
	case cfg.sdkRoot != "":
		p.sdkRoot, p.sdkSource = cfg.sdkRoot, sdk.SourceOverride
	case fileCfg.SDK.Root != "":
		p.sdkRoot, p.sdkSource = fileCfg.SDK.Root, sdk.SourceOverride
	default:
		p.sdkRoot, p.sdkSource = sdk.Root(cfg.lookup, props.SDKDir())
	}
	logger.Debug("android sdk", "root", p.sdkRoot, "source", string(p.sdkSource))

	fallback := fileCfg.NDK.Fallback
	if cfg.fallback != "" {
		fallback = cfg.fallback
	}
	ranking := fileCfg.Ranking()
	if cfg.ranking != nil {
		ranking = cfg.ranking
	}
	p.resolver = ndk.NewResolver(
		ndk.WithFallback(fallback),
		ndk.WithRanking(ranking),
		ndk.WithLogger(logger),
	)
	return p, nil
}

// SDK returns the Android SDK layout and where its root came from. Root is
// empty when nothing was found.
func (p *Project) SDK() (sdk.Layout, sdk.Source) {
	return sdk.Layout{Root: p.sdkRoot}, p.sdkSource
}

// NDKVersion returns the NDK version the Android build should use.
func (p *Project) NDKVersion() string {
	return p.resolver.Resolve(p.sdkRoot)
}

// NDKPath returns the install directory of NDKVersion. Unlike NDKVersion it
// fails if the SDK is unknown or the version is not installed.
func (p *Project) NDKPath() (string, error) {
	if p.sdkRoot == "" {
		return "", ErrNoSDK
	}
	version := p.NDKVersion()
	path := sdk.Layout{Root: p.sdkRoot}.NDK(version)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoNDK, path)
	}
	return path, nil
}

// InstalledNDKs lists the NDK installs under the SDK, newest first.
func (p *Project) InstalledNDKs(ctx context.Context) ([]ndk.Install, error) {
	if p.sdkRoot == "" {
		return nil, ErrNoSDK
	}
	installs, err := ndk.List(ctx, p.sdkRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return installs, err
}

// AppVersion returns flutter.versionCode and flutter.versionName with their
// Gradle defaults.
func (p *Project) AppVersion() localprops.AppVersion {
	return p.LocalProperties.AppVersion()
}

// Pipeline returns a task pipeline using the project's build settings and the
// SDK's adb. opts are applied after the defaults.
func (p *Project) Pipeline(opts ...pipeline.Option) *pipeline.Pipeline {
	base := []pipeline.Option{
		pipeline.WithBuildSettings(p.Config.BuildSettings()),
		pipeline.WithLogger(p.logger),
	}
	if s := (sdk.Layout{Root: p.sdkRoot}); s.Exists() {
		base = append(base, pipeline.WithADB(s.ADB()))
	}
	return pipeline.New(p.Layout, append(base, opts...)...)
}

// AddPage scaffolds a feature page and registers it in the service locator.
func (p *Project) AddPage(page string, force bool) (*scaffold.Report, error) {
	return scaffold.Generate(p.Layout.ProjectDir, page, scaffold.Options{
		Force:  force,
		Logger: p.logger,
	})
}

// PinBazel points the android_ndk_repository declarations in file at the
// resolved NDK install.
func (p *Project) PinBazel(file string) (*bazelpin.Result, error) {
	path, err := p.NDKPath()
	if err != nil {
		return nil, err
	}
	res, err := bazelpin.PinFile(file, path)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("pinned ndk", "file", file, "path", path, "changed", res.Changed)
	return res, nil
}
