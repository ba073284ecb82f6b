// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"authprov/internal/container"
	"authprov/internal/pkgindex"
	"authprov/internal/provision"
	"authprov/internal/source"
)

var (
	verifyFlags struct {
		lockPath string
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check the last build against its upstream",
		Long: `Check the most recent build record against upstream state.

For a pinned build, verify confirms the pinned release still exists on
the package index, that the image actually carries that version, and
that no source checkout leaked into the image.

For a source build, verify confirms the image carries no package-index
install of the tool, then compares the revision captured in the image
against the origin's current default-branch head. A stale image is
reported with exit code 1; rebuild with 'authprov build --source'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd)
		},
	}
)

func init() {
	verifyCmd.Flags().StringVar(&verifyFlags.lockPath, "lock", "", "lock record to verify (default is the cache directory's record)")
}

func runVerify(cmd *cobra.Command) error {
	ctx := cmd.Context()

	lockPath := verifyFlags.lockPath
	if lockPath == "" {
		dir := provision.DefaultConfig().CacheDir
		if cfg.Provision.CacheDir != "" {
			dir = cfg.Provision.CacheDir.String()
		}
		lockPath = filepath.Join(dir, provision.LockFileName)
	}

	record, err := provision.ReadLock(lockPath)
	if err != nil {
		return fmt.Errorf("no build to verify: %w", err)
	}

	engine, err := resolveEngine(cfg)
	if err != nil {
		return err
	}

	switch record.Mode {
	case provision.ModePinned:
		return verifyPinned(ctx, cmd, engine, pkgindex.NewClient(), record)
	case provision.ModeSource:
		return verifySource(ctx, cmd, engine, record)
	default:
		return fmt.Errorf("lock record has unknown acquisition mode %q", record.Mode)
	}
}

// verifyPinned confirms the pinned release exists upstream, that it is what
// the image carries, and that the other acquisition mode left no trace.
func verifyPinned(ctx context.Context, cmd *cobra.Command, engine container.Engine, index *pkgindex.Client, record *provision.LockRecord) error {
	out := cmd.OutOrStdout()

	published, err := index.HasRelease(ctx, record.Package, record.PinnedVersion)
	if err != nil {
		return err
	}
	if !published {
		fmt.Fprintf(out, "%s release %s of %s is not on the package index\n",
			ErrorStyle.Render("✗"), record.PinnedVersion, record.Package)
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(out, "%s release %s is published\n", SuccessStyle.Render("✓"), record.PinnedVersion)

	installed, err := installedVersion(ctx, engine, record.Image, record.Package)
	if err != nil {
		return err
	}
	if installed != record.PinnedVersion {
		fmt.Fprintf(out, "%s image carries %s, lock record says %s\n",
			ErrorStyle.Render("✗"), installed, record.PinnedVersion)
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(out, "%s image %s carries %s %s\n",
		SuccessStyle.Render("✓"), record.Image, record.Package, installed)

	// Mode exclusivity: a pinned image must not also carry a source checkout.
	if rev, err := source.NewImageProber(engine).Revision(ctx, record.Image, provision.DefaultWorkDir); err == nil {
		fmt.Fprintf(out, "%s pinned image carries a source checkout at %s (%s)\n",
			ErrorStyle.Render("✗"), provision.DefaultWorkDir, rev.Short())
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(out, "%s image carries no source checkout\n", SuccessStyle.Render("✓"))
	return nil
}

// verifySource confirms the image carries no package-index install of the
// tool, then compares the revision in the image with the origin's head.
func verifySource(ctx context.Context, cmd *cobra.Command, engine container.Engine, record *provision.LockRecord) error {
	out := cmd.OutOrStdout()

	// Mode exclusivity: a source image must not also carry a pinned install.
	if installed, err := installedVersion(ctx, engine, record.Image, record.Package); err == nil {
		fmt.Fprintf(out, "%s source image also carries %s %s from the package index\n",
			ErrorStyle.Render("✗"), record.Package, installed)
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(out, "%s image carries no package-index install\n", SuccessStyle.Render("✓"))

	head, err := source.NewOriginResolver().Head(ctx, record.SourceOrigin)
	if err != nil {
		return err
	}

	imageRev, err := source.NewImageProber(engine).Revision(ctx, record.Image, provision.DefaultWorkDir)
	if err != nil {
		return err
	}

	if imageRev != head {
		fmt.Fprintf(out, "%s image is at %s, origin head is %s: rebuild with 'authprov build --source'\n",
			WarningStyle.Render("!"), imageRev.Short(), head.Short())
		return &ExitError{Code: 1}
	}

	fmt.Fprintf(out, "%s image %s matches origin head %s\n",
		SuccessStyle.Render("✓"), record.Image, head.Short())
	return nil
}

// installedVersion asks pip inside the image which version it carries.
func installedVersion(ctx context.Context, engine container.Engine, image, pkg string) (string, error) {
	var stdout, stderr bytes.Buffer

	result, err := engine.Run(ctx, container.RunOptions{
		Image:      image,
		Entrypoint: "pip",
		Command:    []string{"show", pkg},
		Remove:     true,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("pip show %s exited %d in image %s: %s",
			pkg, result.ExitCode, image, strings.TrimSpace(stderr.String()))
	}

	return pkgindex.ParsePipShowVersion(stdout.String())
}
