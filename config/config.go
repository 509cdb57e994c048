// Package config loads the optional flutterkit.toml project file.
//
//	[ndk]
//	fallback = "27.0.12077973"
//	ranking = "composite"     # or "semver"
//
//	[sdk]
//	root = "/opt/android-sdk" # overrides ANDROID_HOME / ANDROID_SDK_ROOT
//
//	[build]
//	target_platform = "android-arm64"
//	obfuscate = true
//	split_debug_info = "./"
//	open_outputs = true
//
// A missing file yields Default().
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/albertocavalcante/go-flutterkit/ndk"
	"github.com/albertocavalcante/go-flutterkit/pipeline"
	"github.com/pelletier/go-toml/v2"
)

// FileName is looked up in the project root.
const FileName = "flutterkit.toml"

// Config is the project configuration.
type Config struct {
	NDK   NDK   `toml:"ndk"`
	SDK   SDK   `toml:"sdk"`
	Build Build `toml:"build"`
}

type NDK struct {
	Fallback string `toml:"fallback"`
	Ranking  string `toml:"ranking"`
}

type SDK struct {
	Root string `toml:"root"`
}

// Build uses pointers so an absent key keeps the default.
type Build struct {
	TargetPlatform *string `toml:"target_platform"`
	Obfuscate      *bool   `toml:"obfuscate"`
	SplitDebugInfo *string `toml:"split_debug_info"`
	OpenOutputs    *bool   `toml:"open_outputs"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{NDK: NDK{Fallback: ndk.FallbackVersion, Ranking: "composite"}}
}

// Load reads path. A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML content on top of Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be expressed in the TOML types.
func (c *Config) Validate() error {
	if _, err := ndk.ParseRanking(c.NDK.Ranking); err != nil {
		return err
	}
	if c.NDK.Fallback != "" && !ndk.IsCandidateName(c.NDK.Fallback) {
		return fmt.Errorf("ndk.fallback %q is not a version", c.NDK.Fallback)
	}
	b := c.BuildSettings()
	if b.Obfuscate && b.SplitDebugInfo == "" {
		return errors.New("build.obfuscate requires build.split_debug_info")
	}
	return nil
}

// Ranking returns the configured NDK ranking. Validate has already checked it.
func (c *Config) Ranking() ndk.Ranking {
	r, err := ndk.ParseRanking(c.NDK.Ranking)
	if err != nil {
		return ndk.CompositeRanking{}
	}
	return r
}

// BuildSettings merges the [build] table onto pipeline defaults.
func (c *Config) BuildSettings() pipeline.BuildSettings {
	s := pipeline.DefaultBuildSettings()
	if v := c.Build.TargetPlatform; v != nil {
		s.TargetPlatform = *v
	}
	if v := c.Build.Obfuscate; v != nil {
		s.Obfuscate = *v
	}
	if v := c.Build.SplitDebugInfo; v != nil {
		s.SplitDebugInfo = *v
	}
	if v := c.Build.OpenOutputs; v != nil {
		s.OpenOutputs = *v
	}
	return s
}
