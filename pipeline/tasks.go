package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type step struct {
	desc string
	dir  string
	argv []string
	// fn, when set, runs in-process instead of argv.
	fn func(ctx context.Context) error
}

type task struct {
	name    string
	summary string
	header  string
	steps   func(p *Pipeline) []step
	finish  func(ctx context.Context, p *Pipeline, res *Result)
}

var tasks = []task{
	{
		name:    "apk",
		summary: "Build release APK (Full Process)",
		header:  "Building APK (Full Process)...",
		steps: func(p *Pipeline) []step {
			return []step{p.clean(), p.pubGet(), p.buildRunner("Generating build files..."), p.buildAPK()}
		},
		finish: func(ctx context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "APK built successfully!", "APK build failed!")
			p.reportAPKSizes()
			if !res.Failed() {
				p.open(ctx, p.layout.APKDir())
			}
		},
	},
	{
		name:    "aab",
		summary: "Build release AAB",
		header:  "Building AAB...",
		steps: func(p *Pipeline) []step {
			return []step{p.clean(), p.pubGet(), p.buildRunner("Generating build files..."), p.buildAAB()}
		},
		finish: func(ctx context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "AAB built successfully!", "AAB build failed!")
			if !res.Failed() {
				p.open(ctx, p.layout.BundleDir())
			}
		},
	},
	{
		name:    "lang",
		summary: "Generate localization files",
		header:  "Generating localizations...",
		steps: func(p *Pipeline) []step {
			return []step{p.genL10n("Generating localizations")}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "Localizations generated successfully.", "Localization generation failed!")
		},
	},
	{
		name:    "db",
		summary: "Run build_runner",
		header:  "Executing build_runner...",
		steps: func(p *Pipeline) []step {
			return []step{p.buildRunner("Running build_runner")}
		},
	},
	{
		name:    "setup",
		summary: "Perform full project setup",
		header:  "Performing full setup...",
		steps: func(p *Pipeline) []step {
			return []step{
				p.clean(),
				p.flutter("Upgrading dependencies...", "pub", "upgrade"),
				p.buildRunner("Running build_runner..."),
				p.genL10n("Generating localizations..."),
				p.flutter("Refreshing dependencies...", "pub", "upgrade"),
				p.flutter("Analyzing code...", "analyze"),
				p.command("Formatting code...", "dart", "format", "."),
			}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "Full setup completed successfully.", "Full setup finished with errors.")
		},
	},
	{
		name:    "cache-repair",
		summary: "Repair pub cache",
		header:  "Repairing pub cache...",
		steps: func(p *Pipeline) []step {
			return []step{p.flutter("Repairing pub cache...", "pub", "cache", "repair")}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "Pub cache repaired successfully.", "Pub cache repair failed!")
		},
	},
	{
		name:    "cleanup",
		summary: "Clean project and get dependencies",
		header:  "Cleaning up project...",
		steps: func(p *Pipeline) []step {
			return []step{p.clean(), p.pubGet()}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "Project cleaned successfully!", "Project cleanup failed!")
		},
	},
	{
		name:    "release-run",
		summary: "Build & install release APK on connected device",
		header:  "Building & Installing Release APK...",
		steps: func(p *Pipeline) []step {
			return []step{
				p.clean(),
				p.pubGet(),
				p.genL10n("Generating localizations..."),
				p.buildRunner("Generating build files..."),
				p.buildAPK(),
				p.installAPK(),
			}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			fmt.Fprintln(p.reporter.out)
			p.reportAPKSizes()
			install := res.Steps[len(res.Steps)-1]
			if install.Err == nil {
				p.reporter.Successf("APK built and installed successfully!")
			} else {
				p.reporter.Failuref("APK built but install failed!")
			}
		},
	},
	{
		name:    "pod",
		summary: "Update iOS pods",
		header:  "Updating iOS pods...",
		steps: func(p *Pipeline) []step {
			ios := p.layout.IOSDir()
			return []step{
				{desc: "Removing Podfile.lock", fn: func(context.Context) error {
					err := os.Remove(filepath.Join(ios, "Podfile.lock"))
					if errors.Is(err, fs.ErrNotExist) {
						return nil
					}
					return err
				}},
				{desc: "Updating pod repository", dir: ios, argv: []string{"pod", "repo", "update"}},
				{desc: "Installing pods", dir: ios, argv: []string{"pod", "install"}},
			}
		},
		finish: func(_ context.Context, p *Pipeline, res *Result) {
			p.conclude(res, "iOS pods updated successfully!", "iOS pod update failed!")
		},
	},
}

func lookupTask(name string) (task, bool) {
	for _, t := range tasks {
		if t.name == name {
			return t, true
		}
	}
	return task{}, false
}

func (p *Pipeline) command(desc string, argv ...string) step {
	return step{desc: desc, dir: p.layout.ProjectDir, argv: argv}
}

func (p *Pipeline) flutter(desc string, args ...string) step {
	return p.command(desc, append([]string{"flutter"}, args...)...)
}

func (p *Pipeline) clean() step {
	return p.flutter("Cleaning project...", "clean")
}

func (p *Pipeline) pubGet() step {
	return p.flutter("Getting dependencies...", "pub", "get")
}

func (p *Pipeline) genL10n(desc string) step {
	return p.flutter(desc, "gen-l10n")
}

func (p *Pipeline) buildRunner(desc string) step {
	return p.command(desc, "dart", "run", "build_runner", "build", "--delete-conflicting-outputs")
}

// releaseFlags are shared by apk and appbundle builds.
func (p *Pipeline) releaseFlags() []string {
	flags := []string{"--release"}
	if p.build.Obfuscate {
		flags = append(flags, "--obfuscate")
	}
	return flags
}

func (p *Pipeline) debugInfoFlags() []string {
	if p.build.SplitDebugInfo == "" {
		return nil
	}
	return []string{"--split-debug-info=" + p.build.SplitDebugInfo}
}

func (p *Pipeline) buildAPK() step {
	args := append([]string{"build", "apk"}, p.releaseFlags()...)
	if p.build.TargetPlatform != "" {
		args = append(args, "--target-platform", p.build.TargetPlatform)
	}
	args = append(args, p.debugInfoFlags()...)
	return p.flutter("Building APK...", args...)
}

func (p *Pipeline) buildAAB() step {
	args := append([]string{"build", "appbundle"}, p.releaseFlags()...)
	args = append(args, p.debugInfoFlags()...)
	return p.flutter("Building AAB...", args...)
}

func (p *Pipeline) installAPK() step {
	return step{desc: "Installing on device...", fn: func(ctx context.Context) error {
		apk, err := p.layout.PreferredAPK()
		if err != nil {
			return err
		}
		p.logger.Debug("installing apk", "apk", apk.Path, "adb", p.adb)
		out, err := p.runner.Run(ctx, p.layout.ProjectDir, p.adb, "install", "-r", apk.Path)
		if err != nil && out.Stderr != "" {
			return fmt.Errorf("%w: %s", err, out.Stderr)
		}
		return err
	}}
}

func (p *Pipeline) conclude(res *Result, ok, failed string) {
	fmt.Fprintln(p.reporter.out)
	if res.Failed() {
		p.reporter.Failuref("%s", failed)
		return
	}
	p.reporter.Successf("%s", ok)
}

func (p *Pipeline) reportAPKSizes() {
	apks, err := p.layout.APKs()
	if err != nil || len(apks) == 0 {
		p.reporter.Failuref("APK file not found in %s", p.layout.APKDir())
		return
	}
	for _, a := range apks {
		p.reporter.Infof("APK: %s | Size: %.2f MB", a.Name(), a.SizeMB())
	}
}

// OpenCommand returns the command that opens dir in the file browser of goos,
// or nil if goos has none.
func OpenCommand(goos, dir string) []string {
	switch goos {
	case "darwin":
		return []string{"open", dir}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", dir}
	case "windows":
		return []string{"cmd", "/c", "start", "", dir}
	default:
		return nil
	}
}

func (p *Pipeline) open(ctx context.Context, dir string) {
	if !p.build.OpenOutputs {
		return
	}
	argv := OpenCommand(p.goos, dir)
	if argv == nil {
		p.reporter.Infof("Cannot open directory automatically. Please check: %s", dir)
		return
	}
	if _, err := p.runner.Run(ctx, p.layout.ProjectDir, argv[0], argv[1:]...); err != nil {
		p.logger.Debug("open output directory failed", "dir", dir, "error", err)
		p.reporter.Infof("Please check: %s", dir)
	}
}
