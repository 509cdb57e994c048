// Command flutterkit resolves the Android NDK for a Flutter project and runs
// its build and maintenance tasks.
//
//	flutterkit ndk              # Using NDK Version: 27.0.12077973
//	flutterkit ndk list
//	flutterkit apk
//	flutterkit page settings
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
