// Package bazelpin points Bazel's Android NDK repository at a specific NDK
// install.
//
// Two forms are recognised:
//
//	# WORKSPACE / .bzl
//	android_ndk_repository(name = "androidndk", path = "...")
//
//	# MODULE.bazel with rules_android_ndk
//	ndk = use_extension("@rules_android_ndk//:extension.bzl", "android_ndk_repository_extension")
//	ndk.configure(path = "...")
//
// The path attribute is set (or added) on every matching call and the file is
// reformatted with buildifier's printer.
package bazelpin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/albertocavalcante/go-flutterkit/internal/buildutil"
	"github.com/bazelbuild/buildtools/build"
)

// ErrNoNDKRepository is returned when a file declares no NDK repository.
var ErrNoNDKRepository = errors.New("no android_ndk_repository declaration found")

const (
	ruleName      = "android_ndk_repository"
	extensionName = "android_ndk_repository_extension"
	configureTag  = "configure"
	pathAttr      = "path"
)

// Result describes the outcome of Pin.
type Result struct {
	// Content is the reformatted file.
	Content []byte
	// Calls is the number of declarations that were found.
	Calls int
	// Changed is true if Content differs from the input.
	Changed bool
	// Previous holds the old path values, "" where the attribute was absent.
	Previous []string
}

// Pin sets path on every NDK repository declaration in content. filename is
// used to pick the dialect (WORKSPACE, MODULE.bazel, .bzl) and in errors.
func Pin(filename string, content []byte, ndkPath string) (*Result, error) {
	f, err := build.Parse(filename, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	value := filepath.ToSlash(ndkPath)
	extensions := extensionProxies(f)

	res := &Result{}
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok || !isNDKDeclaration(call, extensions) {
			continue
		}
		res.Calls++
		res.Previous = append(res.Previous, buildutil.String(call, pathAttr))
		buildutil.SetString(call, pathAttr, value)
	}
	if res.Calls == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoNDKRepository, filename)
	}

	res.Content = build.Format(f)
	res.Changed = !bytes.Equal(res.Content, content)
	return res, nil
}

// PinFile applies Pin to the file at path and writes it back if it changed.
func PinFile(path, ndkPath string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := Pin(filepath.Base(path), content, ndkPath)
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return res, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, res.Content, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}

// extensionProxies returns the names bound to
// use_extension(..., "android_ndk_repository_extension").
func extensionProxies(f *build.File) map[string]bool {
	out := make(map[string]bool)
	for _, stmt := range f.Stmt {
		assign, ok := stmt.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok {
			continue
		}
		call, ok := assign.RHS.(*build.CallExpr)
		if !ok || buildutil.FuncName(call) != "use_extension" {
			continue
		}
		if buildutil.PositionalString(call, 1) == extensionName || buildutil.String(call, "extension_name") == extensionName {
			out[lhs.Name] = true
		}
	}
	return out
}

func isNDKDeclaration(call *build.CallExpr, extensions map[string]bool) bool {
	if buildutil.FuncName(call) == ruleName {
		return true
	}
	recv, method, ok := buildutil.MethodCall(call)
	return ok && method == configureTag && extensions[recv]
}
