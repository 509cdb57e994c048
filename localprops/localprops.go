// Package localprops reads the Android project's local.properties file.
//
// local.properties is written by Flutter tooling and Android Studio. It holds
// machine-specific paths (sdk.dir, flutter.sdk) and the app version Flutter
// derives from pubspec.yaml (flutter.versionCode, flutter.versionName).
package localprops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/magiconair/properties"
)

// FileName is the conventional name of the file inside the android/ directory.
const FileName = "local.properties"

// Well-known keys.
const (
	KeySDKDir      = "sdk.dir"
	KeyFlutterSDK  = "flutter.sdk"
	KeyVersionCode = "flutter.versionCode"
	KeyVersionName = "flutter.versionName"
)

// Defaults used when the version keys are missing or malformed.
const (
	DefaultVersionCode = 1
	DefaultVersionName = "1.0"
)

// Properties wraps a parsed local.properties file.
// A zero Properties behaves like an empty file.
type Properties struct {
	p *properties.Properties
}

// AppVersion is the Android versionCode/versionName pair.
type AppVersion struct {
	Code int
	Name string
}

// Load reads path. A missing file is not an error and yields empty
// properties, matching the Gradle script which only loads the file if it exists.
func Load(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Properties{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses local.properties content.
func Parse(data []byte) (*Properties, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &Properties{p: p}, nil
}

// Get returns the value for key and whether it was set.
func (lp *Properties) Get(key string) (string, bool) {
	if lp == nil || lp.p == nil {
		return "", false
	}
	return lp.p.Get(key)
}

// SDKDir returns sdk.dir, or "".
func (lp *Properties) SDKDir() string {
	v, _ := lp.Get(KeySDKDir)
	return v
}

// FlutterSDK returns flutter.sdk, or "".
func (lp *Properties) FlutterSDK() string {
	v, _ := lp.Get(KeyFlutterSDK)
	return v
}

// AppVersion returns the app version, defaulting code to 1 and name to "1.0".
func (lp *Properties) AppVersion() AppVersion {
	v := AppVersion{Code: DefaultVersionCode, Name: DefaultVersionName}
	if raw, ok := lp.Get(KeyVersionCode); ok {
		if code, err := strconv.Atoi(raw); err == nil {
			v.Code = code
		}
	}
	if name, ok := lp.Get(KeyVersionName); ok {
		v.Name = name
	}
	return v
}
