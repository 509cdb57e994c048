package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/albertocavalcante/go-flutterkit/pipeline"
	"github.com/spf13/cobra"
)

func newNDKCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ndk",
		Short: "Print the NDK version the Android build will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using NDK Version: %s\n", p.NDKVersion())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed NDK versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			installs, err := p.InstalledNDKs(cmd.Context())
			if err != nil {
				return err
			}
			if len(installs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no NDK installed")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tREVISION\tPATH")
			for _, inst := range installs {
				rev := inst.Revision
				if rev == "" {
					rev = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", inst.Name, rev, inst.Path)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the install directory of the resolved NDK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			path, err := p.NDKPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

func newBazelPinCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bazel-pin <WORKSPACE|MODULE.bazel|file.bzl>",
		Short: "Point android_ndk_repository at the resolved NDK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			res, err := p.PinBazel(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				fmt.Fprintf(out, "%s already pinned\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "updated %d declaration(s) in %s\n", res.Calls, args[0])
			return nil
		},
	}
}

func newPageCmd(g *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "page <name>",
		Short: "Scaffold a feature page (snake_case name) and register its DI setup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.open(cmd)
			if err != nil {
				return err
			}
			report, err := p.AddPage(args[0], force)
			if err != nil {
				return err
			}

			r := pipeline.NewReporter(cmd.OutOrStdout())
			r.Headerf("Feature %s (%s)", report.Feature.Page, report.Feature.Prefix)
			for _, d := range report.Dirs {
				r.Infof("dir  %s", d)
			}
			for _, f := range report.Files {
				r.Successf("file %s", f)
			}
			if report.ServiceLocatorUpdated {
				r.Successf("registered %s", report.DICall)
			}
			for _, w := range report.Warnings {
				r.Failuref("%s", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing feature files")
	return cmd
}

// newTaskCmds registers one command per pipeline task.
func newTaskCmds(g *globalFlags) []*cobra.Command {
	var cmds []*cobra.Command
	for _, name := range pipeline.Tasks() {
		summary, _ := pipeline.Describe(name)
		cmds = append(cmds, &cobra.Command{
			Use:   name,
			Short: summary,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := g.open(cmd)
				if err != nil {
					return err
				}
				res, err := p.Pipeline(pipeline.WithOutput(cmd.OutOrStdout())).Run(cmd.Context(), name)
				if err != nil {
					return err
				}
				if res.Failed() {
					return errors.Join(fmt.Errorf("task %s: %d step(s) failed", name, len(res.Errors())), res.Err())
				}
				return nil
			},
		})
	}
	return cmds
}
