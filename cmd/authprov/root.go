// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for authprov.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"authprov/internal/config"
	"authprov/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, populated before any RunE fires.
	cfg = config.DefaultConfig()

	// logger writes structured diagnostics to stderr, keeping stdout for
	// machine-readable command output.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "authprov",
		Short: "Provision container images for the spotizerr-auth credential tool",
		Long: TitleStyle.Render("authprov") + SubtitleStyle.Render(" - provisioning for the spotizerr-auth credential tool") + `

authprov builds container images that carry the spotizerr-auth
credential capture tool, using one of two acquisition modes:

  pinned    install one exact published release from the package index
  source    clone the tool's repository at its current default-branch head

It then hands control to the tool inside the image, forwarding your
terminal and reporting the tool's own exit code.

` + SubtitleStyle.Render("Examples:") + `
  authprov build --pin 1.1.1        Build an image with the 1.1.1 release
  authprov build --source           Build from the repository head
  authprov run --pin 1.1.1          Build (or reuse) and run the tool
  authprov render --source          Print the Dockerfile without building
  authprov verify                   Check the last build against upstream`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/authprov/config.cue)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// fang.Execute provides styled help, errors, and version output.
	// The version is passed via fang.WithVersion since fang overrides rootCmd.Version.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		// Config problems are surfaced but never fatal: defaults still work.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}
	cfg = loaded

	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors render their suggestions; verbose mode shows the chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
