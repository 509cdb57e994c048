package flutterkit

import "errors"

// Sentinel errors for project lookups.
var (
	// ErrNoSDK indicates no Android SDK root could be located.
	ErrNoSDK = errors.New("android sdk not found")

	// ErrNoNDK indicates the resolved NDK version is not installed under the SDK.
	ErrNoNDK = errors.New("ndk not installed")
)
