package main

import (
	"fmt"
	"io"
	"log/slog"

	flutterkit "github.com/albertocavalcante/go-flutterkit"
	"github.com/albertocavalcante/go-flutterkit/ndk"
	"github.com/albertocavalcante/go-flutterkit/sdk"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	project    string
	configFile string
	sdkRoot    string
	fallback   string
	ranking    string
	verbose    bool

	// env is swapped in tests.
	env sdk.LookupFunc
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{env: sdk.OSLookup}
	return newRootCmdWith(g)
}

func newRootCmdWith(g *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "flutterkit",
		Short:         "Android NDK resolution and build tasks for Flutter projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.project, "project", "C", ".", "Flutter project directory")
	pf.StringVar(&g.configFile, "config", "", "config file (default <project>/flutterkit.toml)")
	pf.StringVar(&g.sdkRoot, "sdk", "", "Android SDK root (default $ANDROID_HOME, $ANDROID_SDK_ROOT, local.properties sdk.dir)")
	pf.StringVar(&g.fallback, "ndk-fallback", "", "NDK version used when none is installed")
	pf.StringVar(&g.ranking, "ndk-ranking", "", `NDK ordering: "composite" or "semver"`)
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log discovery details to stderr")

	root.AddCommand(
		newNDKCmd(g),
		newSDKCmd(g),
		newAppVersionCmd(g),
		newBazelPinCmd(g),
		newPageCmd(g),
	)
	root.AddCommand(newTaskCmds(g)...)
	return root
}

// logger writes to stderr when --verbose is set.
func (g *globalFlags) logger(stderr io.Writer) *slog.Logger {
	if !g.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// open loads the project with the flag overrides applied.
func (g *globalFlags) open(cmd *cobra.Command) (*flutterkit.Project, error) {
	opts := []flutterkit.Option{
		flutterkit.WithEnv(g.env),
		flutterkit.WithLogger(g.logger(cmd.ErrOrStderr())),
	}
	if g.configFile != "" {
		opts = append(opts, flutterkit.WithConfigFile(g.configFile))
	}
	if g.sdkRoot != "" {
		opts = append(opts, flutterkit.WithSDKRoot(g.sdkRoot))
	}
	if g.fallback != "" {
		opts = append(opts, flutterkit.WithNDKFallback(g.fallback))
	}
	if g.ranking != "" {
		r, err := ndk.ParseRanking(g.ranking)
		if err != nil {
			return nil, err
		}
		opts = append(opts, flutterkit.WithNDKRanking(r))
	}
	return flutterkit.Open(g.project, opts...)
}

func newSDKCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sdk",
		Short: "Print the Android SDK root and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			s, src := p.SDK()
			if s.Root == "" {
				return flutterkit.ErrNoSDK
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (from %s)\n", s.Root, src)
			if !s.Exists() {
				fmt.Fprintln(out, "warning: directory does not exist")
			}
			return nil
		},
	}
}

func newAppVersionCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "app-version",
		Short: "Print flutter.versionCode and flutter.versionName from local.properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			v := p.AppVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "versionCode: %d\nversionName: %s\n", v.Code, v.Name)
			return nil
		},
	}
}
