package flutterkit

import (
	"errors"
	"log/slog"

	"github.com/albertocavalcante/go-flutterkit/ndk"
	"github.com/albertocavalcante/go-flutterkit/sdk"
)

// Option configures a Project.
type Option func(*projectConfig) error

type projectConfig struct {
	lookup     sdk.LookupFunc
	configFile string
	sdkRoot    string
	fallback   string
	ranking    ndk.Ranking

	// logger receives debug output. Nil means silent.
	logger *slog.Logger
}

// WithEnv replaces os.LookupEnv for SDK discovery.
func WithEnv(lookup sdk.LookupFunc) Option {
	return func(c *projectConfig) error {
		if lookup == nil {
			return errors.New("env lookup cannot be nil")
		}
		c.lookup = lookup
		return nil
	}
}

// WithConfigFile loads settings from path instead of <project>/flutterkit.toml.
func WithConfigFile(path string) Option {
	return func(c *projectConfig) error {
		c.configFile = path
		return nil
	}
}

// WithSDKRoot pins the Android SDK root, bypassing environment and
// local.properties lookup.
func WithSDKRoot(root string) Option {
	return func(c *projectConfig) error {
		c.sdkRoot = root
		return nil
	}
}

// WithNDKFallback overrides the version used when no NDK is installed.
func WithNDKFallback(version string) Option {
	return func(c *projectConfig) error {
		if version != "" && !ndk.IsCandidateName(version) {
			return errors.New("ndk fallback must start with <major>.<minor>")
		}
		c.fallback = version
		return nil
	}
}

// WithNDKRanking overrides how installed NDK versions are compared.
func WithNDKRanking(r ndk.Ranking) Option {
	return func(c *projectConfig) error {
		c.ranking = r
		return nil
	}
}

// WithLogger sets a structured logger for discovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *projectConfig) error {
		c.logger = logger
		return nil
	}
}
