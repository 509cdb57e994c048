//go:build tools

// Package lint pins the linters used on flutterkit in their own module so
// the main go.mod only carries runtime dependencies.
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint
